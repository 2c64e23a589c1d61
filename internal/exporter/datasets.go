package exporter

import (
	"fmt"
	"strconv"

	"trainpulse/pkg/contracts/domain"
)

// DatasetTable flattens one canonical record collection into a CSV table.
// Records keep their parsed order so exports are reproducible run to run.
func DatasetTable(ds *domain.Datasets, which domain.Dataset) (WriteOptions, error) {
	switch which {
	case domain.DatasetCourses:
		return trainingTable(ds.Training), nil
	case domain.DatasetEvaluations:
		return evaluationTable(ds.Evaluations), nil
	case domain.DatasetQuestions:
		return questionTable(ds.Questions), nil
	case domain.DatasetOpenSurvey:
		return surveyTable(ds.Surveys), nil
	case domain.DatasetMultipleChoice:
		return multipleChoiceTable(ds.MultipleChoice), nil
	default:
		return WriteOptions{}, fmt.Errorf("unknown dataset %q", which)
	}
}

func trainingTable(records []domain.TrainingRecord) WriteOptions {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.EmployeeName,
			r.Department,
			r.CourseName,
			string(r.Status),
			formatFloat(r.Progress),
			formatFloat(r.Score),
			r.CertificateObtained,
			r.DateAssigned,
			r.CompletionDate,
			formatFloat(r.ReproductionHours),
		})
	}
	return WriteOptions{
		Headers: []string{
			"employee", "department", "course", "status", "progress",
			"score", "certificate", "date_assigned", "completion_date",
			"reproduction_hours",
		},
		Records:   rows,
		BOMPrefix: true,
	}
}

func evaluationTable(records []domain.EvaluationRecord) WriteOptions {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.UserName,
			r.Email,
			strconv.Itoa(r.Attempts),
			r.FirstAttemptDate,
			r.LastAttemptDate,
			strconv.Itoa(r.CorrectAnswers),
			strconv.Itoa(r.IncorrectAnswers),
			strconv.Itoa(r.TotalQuestions),
			formatFloat(r.Score),
			r.Status,
			r.Duration,
			r.CourseName,
		})
	}
	return WriteOptions{
		Headers: []string{
			"user", "email", "attempts", "first_attempt", "last_attempt",
			"correct", "incorrect", "total_questions", "score", "status",
			"duration", "course",
		},
		Records:   rows,
		BOMPrefix: true,
	}
}

func questionTable(records []domain.QuestionRecord) WriteOptions {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.UserName,
			r.Email,
			r.Question,
			r.UserAnswer,
			string(r.Status),
			r.CourseName,
		})
	}
	return WriteOptions{
		Headers:   []string{"user", "email", "question", "answer", "status", "course"},
		Records:   rows,
		BOMPrefix: true,
	}
}

func surveyTable(records []domain.SurveyRecord) WriteOptions {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Email,
			r.CourseName,
			r.SurveyID,
			r.QuestionID,
			r.Question,
			r.Answer,
		})
	}
	return WriteOptions{
		Headers:   []string{"email", "course", "survey_id", "question_id", "question", "answer"},
		Records:   rows,
		BOMPrefix: true,
	}
}

func multipleChoiceTable(records []domain.MultipleChoiceRecord) WriteOptions {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Email,
			r.CourseName,
			r.SurveyID,
			r.QuestionID,
			r.Question,
			r.Choice,
		})
	}
	return WriteOptions{
		Headers:   []string{"email", "course", "survey_id", "question_id", "question", "choice"},
		Records:   rows,
		BOMPrefix: true,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
