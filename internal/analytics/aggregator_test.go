package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainpulse/pkg/contracts/domain"
)

func trainingRecord(mutate func(*domain.TrainingRecord)) domain.TrainingRecord {
	rec := domain.TrainingRecord{
		ID:                  "row-0",
		EmployeeName:        "Ana",
		Department:          "General",
		CourseName:          "Curso General",
		Status:              domain.EnrollmentNotStarted,
		CourseCompletedRaw:  "No",
		CertificateObtained: "No",
	}
	if mutate != nil {
		mutate(&rec)
	}
	return rec
}

func TestComputeFractionalProgressScale(t *testing.T) {
	// Scenario: one record with progress 0.5, certificate issued, course not
	// completed.
	ds := &domain.Datasets{Training: []domain.TrainingRecord{
		trainingRecord(func(r *domain.TrainingRecord) {
			r.Progress = 0.5
			r.CertificateObtained = "Si"
		}),
	}}
	m := Compute(ds)

	assert.Equal(t, 50.0, m.CompletionRate, "0.5 is a fraction when the collection max is <= 1")
	assert.Equal(t, 1, m.CertificatesIssued)

	require.Len(t, m.CompletionDistribution, 1, "zero-count buckets are dropped")
	assert.Equal(t, "No Completado", m.CompletionDistribution[0].Name)
	assert.Equal(t, 1, m.CompletionDistribution[0].Value)

	require.Len(t, m.CertificateDistribution, 1)
	assert.Equal(t, "Con Certificado", m.CertificateDistribution[0].Name)
}

func TestComputeProgressScaleIsGlobal(t *testing.T) {
	// One record above 1.0 flips the whole collection to percent scale; the
	// fractional-looking 0.5 stays 0.5.
	ds := &domain.Datasets{Training: []domain.TrainingRecord{
		trainingRecord(func(r *domain.TrainingRecord) { r.Progress = 0.5 }),
		trainingRecord(func(r *domain.TrainingRecord) { r.Progress = 80 }),
	}}
	m := Compute(ds)
	assert.InDelta(t, (0.5+80)/2, m.CompletionRate, 1e-9)
}

func TestComputeCompletionRateBounds(t *testing.T) {
	ds := &domain.Datasets{Training: []domain.TrainingRecord{
		trainingRecord(func(r *domain.TrainingRecord) { r.Progress = 0.2 }),
		trainingRecord(func(r *domain.TrainingRecord) { r.Progress = 1.0 }),
	}}
	m := Compute(ds)
	assert.InDelta(t, 60.0, m.CompletionRate, 1e-9)
	assert.GreaterOrEqual(t, m.CompletionRate, 0.0)
	assert.LessOrEqual(t, m.CompletionRate, 100.0)
}

func TestComputeEmptyTraining(t *testing.T) {
	m := Compute(&domain.Datasets{})
	assert.Zero(t, m.TotalEmployees)
	assert.Zero(t, m.CompletionRate)
	assert.Zero(t, m.AverageTrainingHours)
	assert.Empty(t, m.CompletionDistribution)
	assert.Empty(t, m.CertificateDistribution)
	assert.Equal(t, "General", m.PrimaryCourseName)
	assert.Nil(t, m.EvaluationMetrics)
	assert.Nil(t, m.QuestionMetrics)
	assert.Nil(t, m.SurveyMetrics)
	assert.Nil(t, m.MultipleChoiceMetrics)
}

func TestComputeEmployeesCountedByName(t *testing.T) {
	ds := &domain.Datasets{Training: []domain.TrainingRecord{
		trainingRecord(func(r *domain.TrainingRecord) { r.ID = "1"; r.EmployeeName = "Ana" }),
		trainingRecord(func(r *domain.TrainingRecord) { r.ID = "2"; r.EmployeeName = "Ana" }),
		trainingRecord(func(r *domain.TrainingRecord) { r.ID = "3"; r.EmployeeName = "Luis" }),
	}}
	assert.Equal(t, 2, Compute(ds).TotalEmployees)
}

func TestDistributionsSumToTotal(t *testing.T) {
	ds := &domain.Datasets{Training: []domain.TrainingRecord{
		trainingRecord(func(r *domain.TrainingRecord) { r.CourseCompletedRaw = "Si"; r.CertificateObtained = "Si" }),
		trainingRecord(func(r *domain.TrainingRecord) { r.CourseCompletedRaw = "No" }),
		trainingRecord(func(r *domain.TrainingRecord) { r.CourseCompletedRaw = "Yes" }),
	}}
	m := Compute(ds)

	sum := 0
	for _, s := range m.CompletionDistribution {
		assert.Positive(t, s.Value)
		sum += s.Value
	}
	assert.Equal(t, len(ds.Training), sum)

	sum = 0
	for _, s := range m.CertificateDistribution {
		assert.Positive(t, s.Value)
		sum += s.Value
	}
	assert.Equal(t, len(ds.Training), sum)
}

func TestDepartmentPerformance(t *testing.T) {
	ds := &domain.Datasets{Training: []domain.TrainingRecord{
		trainingRecord(func(r *domain.TrainingRecord) {
			r.Department = "Ventas"
			r.Progress = 90
			r.Score = 85
			r.Status = domain.EnrollmentCompleted
		}),
		trainingRecord(func(r *domain.TrainingRecord) {
			r.Department = "Ventas"
			r.Progress = 70
			// Score zero and not completed: excluded from the score average.
		}),
		trainingRecord(func(r *domain.TrainingRecord) {
			r.Department = "Soporte"
			r.Progress = 20
		}),
	}}
	m := Compute(ds)

	require.Len(t, m.DepartmentPerformance, 2)
	assert.Equal(t, "Ventas", m.DepartmentPerformance[0].Name, "sorted descending by completion rate")
	assert.InDelta(t, 80.0, m.DepartmentPerformance[0].CompletionRate, 1e-9)
	assert.InDelta(t, 85.0, m.DepartmentPerformance[0].AvgScore, 1e-9)
	assert.Equal(t, "Soporte", m.DepartmentPerformance[1].Name)
	assert.Zero(t, m.DepartmentPerformance[1].AvgScore, "no scored records averages to zero, not NaN")
}

func TestTopCourses(t *testing.T) {
	var training []domain.TrainingRecord
	courses := []string{"A", "B", "B", "C", "C", "C", "D", "E", "F", "G"}
	for _, c := range courses {
		course := c
		training = append(training, trainingRecord(func(r *domain.TrainingRecord) { r.CourseName = course }))
	}
	m := Compute(&domain.Datasets{Training: training})

	require.Len(t, m.TopCourses, 5)
	assert.Equal(t, "C", m.TopCourses[0].Name)
	assert.Equal(t, 3, m.TopCourses[0].Students)
	assert.Equal(t, "B", m.TopCourses[1].Name)
	assert.Equal(t, "C", m.PrimaryCourseName)
}

func TestMonthlyProgressFirstObservedOrder(t *testing.T) {
	ds := &domain.Datasets{Training: []domain.TrainingRecord{
		trainingRecord(func(r *domain.TrainingRecord) {
			r.Status = domain.EnrollmentCompleted
			r.CompletionDate = "2024-03-10"
		}),
		trainingRecord(func(r *domain.TrainingRecord) {
			r.Status = domain.EnrollmentCompleted
			r.CompletionDate = "2024-01-15"
		}),
		trainingRecord(func(r *domain.TrainingRecord) {
			r.Status = domain.EnrollmentCompleted
			r.CompletionDate = "2024-03-22"
		}),
		trainingRecord(func(r *domain.TrainingRecord) {
			// Falls back to the assignment date when completion is absent.
			r.Status = domain.EnrollmentCompleted
			r.DateAssigned = "2024-01-02"
		}),
		trainingRecord(func(r *domain.TrainingRecord) {
			// Unparseable date is skipped, not an error.
			r.Status = domain.EnrollmentCompleted
			r.CompletionDate = "sin fecha"
		}),
		trainingRecord(func(r *domain.TrainingRecord) {
			// Not completed: ignored entirely.
			r.Status = domain.EnrollmentInProgress
			r.CompletionDate = "2024-05-01"
		}),
	}}
	m := Compute(ds)

	require.Len(t, m.MonthlyProgress, 2)
	assert.Equal(t, domain.MonthlyCount{Month: "mar", Completed: 2}, m.MonthlyProgress[0],
		"buckets keep first-observed order, not calendar order")
	assert.Equal(t, domain.MonthlyCount{Month: "ene", Completed: 2}, m.MonthlyProgress[1])
}

func TestEvaluationDeduplication(t *testing.T) {
	// Scenario: two records for the same email keep only the best score.
	ds := &domain.Datasets{Evaluations: []domain.EvaluationRecord{
		{UserName: "Ana", Email: "Ana@Example.com", Attempts: 1, Score: 60, Status: "Reprobado", CourseName: "Calidad"},
		{UserName: "Ana", Email: " ana@example.com ", Attempts: 4, Score: 90, Status: "Aprobado", CourseName: "Calidad"},
	}}
	m := Compute(ds)

	ev := m.EvaluationMetrics
	require.NotNil(t, ev)
	assert.Equal(t, 1, ev.TotalEvaluations, "email keys compare case-insensitively and trimmed")
	assert.Equal(t, 4.0, ev.AvgAttempts, "metrics come from the kept best-score record only")
	assert.Equal(t, 90.0, ev.AvgScore)
	require.Len(t, ev.TopPerformers, 1)
	assert.Equal(t, 90.0, ev.TopPerformers[0].Score)
}

func TestEvaluationPassRateEitherSignal(t *testing.T) {
	ds := &domain.Datasets{Evaluations: []domain.EvaluationRecord{
		{UserName: "A", Email: "a@x.com", Attempts: 1, Score: 50, Status: "Aprobado"},
		{UserName: "B", Email: "b@x.com", Attempts: 1, Score: 75, Status: "Reprobado"},
		{UserName: "C", Email: "c@x.com", Attempts: 1, Score: 40, Status: "Reprobado"},
	}}
	ev := Compute(ds).EvaluationMetrics
	require.NotNil(t, ev)
	// A passes by status, B passes by score >= 70, C fails both signals.
	assert.InDelta(t, 200.0/3, ev.PassRate, 1e-9)

	require.Len(t, ev.PassDistribution, 2)
	assert.Equal(t, "Aprobados", ev.PassDistribution[0].Name)
	assert.Equal(t, 2, ev.PassDistribution[0].Value)
	assert.Equal(t, 1, ev.PassDistribution[1].Value)
}

func TestEvaluationAttemptsHistogram(t *testing.T) {
	ds := &domain.Datasets{Evaluations: []domain.EvaluationRecord{
		{UserName: "A", Email: "a@x.com", Attempts: 7, Score: 10},
		{UserName: "B", Email: "b@x.com", Attempts: 1, Score: 10},
		{UserName: "C", Email: "c@x.com", Attempts: 2, Score: 10},
		{UserName: "D", Email: "d@x.com", Attempts: 2, Score: 10},
		{UserName: "E", Email: "e@x.com", Attempts: 5, Score: 10},
	}}
	ev := Compute(ds).EvaluationMetrics
	require.NotNil(t, ev)

	require.Len(t, ev.AttemptsDistribution, 3)
	assert.Equal(t, domain.AttemptBucket{Attempts: "1", Count: 1}, ev.AttemptsDistribution[0])
	assert.Equal(t, domain.AttemptBucket{Attempts: "2", Count: 2}, ev.AttemptsDistribution[1])
	assert.Equal(t, domain.AttemptBucket{Attempts: "5+", Count: 2}, ev.AttemptsDistribution[2],
		"five or more attempts collapse into the 5+ bucket, sorted last")
}

func TestEvaluationGlobalAccuracy(t *testing.T) {
	ds := &domain.Datasets{Evaluations: []domain.EvaluationRecord{
		{UserName: "A", Email: "a@x.com", Attempts: 1, Score: 80, CorrectAnswers: 8, IncorrectAnswers: 2},
		{UserName: "B", Email: "b@x.com", Attempts: 1, Score: 60, CorrectAnswers: 6, IncorrectAnswers: 4},
	}}
	ev := Compute(ds).EvaluationMetrics
	require.NotNil(t, ev)
	assert.Equal(t, domain.Accuracy{Correct: 14, Incorrect: 6}, ev.GlobalAccuracy)
}

func TestQuestionMetrics(t *testing.T) {
	// Scenario: 3 incorrect and 1 correct for one question, another question
	// with no incorrect answers is excluded entirely.
	q := func(question string, status domain.AnswerStatus) domain.QuestionRecord {
		return domain.QuestionRecord{UserName: "x", Question: question, Status: status, CourseName: "Calidad"}
	}
	ds := &domain.Datasets{Questions: []domain.QuestionRecord{
		q("dificil", domain.AnswerIncorrect),
		q("dificil", domain.AnswerIncorrect),
		q("dificil", domain.AnswerIncorrect),
		q("dificil", domain.AnswerCorrect),
		q("facil", domain.AnswerCorrect),
		q("facil", domain.AnswerCorrect),
	}}
	qm := Compute(ds).QuestionMetrics
	require.NotNil(t, qm)

	assert.Equal(t, 6, qm.TotalQuestionsAnswered)
	require.Len(t, qm.HardestQuestions, 1)
	hardest := qm.HardestQuestions[0]
	assert.Equal(t, "dificil", hardest.Question)
	assert.InDelta(t, 75.0, hardest.FailureRate, 1e-9)
	assert.Equal(t, 3, hardest.IncorrectCount)
	assert.Equal(t, 4, hardest.TotalAttempts)
}

func TestQuestionMetricsTopTenSorted(t *testing.T) {
	var questions []domain.QuestionRecord
	for i := 0; i < 12; i++ {
		question := string(rune('a' + i))
		// Question i gets i+1 incorrect answers out of 13 attempts.
		for j := 0; j < i+1; j++ {
			questions = append(questions, domain.QuestionRecord{Question: question, Status: domain.AnswerIncorrect})
		}
		for j := i + 1; j < 13; j++ {
			questions = append(questions, domain.QuestionRecord{Question: question, Status: domain.AnswerCorrect})
		}
	}
	qm := Compute(&domain.Datasets{Questions: questions}).QuestionMetrics
	require.NotNil(t, qm)

	require.Len(t, qm.HardestQuestions, 10)
	for i := 1; i < len(qm.HardestQuestions); i++ {
		assert.GreaterOrEqual(t,
			qm.HardestQuestions[i-1].FailureRate,
			qm.HardestQuestions[i].FailureRate,
			"sorted descending by failure rate")
	}
	for _, entry := range qm.HardestQuestions {
		assert.GreaterOrEqual(t, entry.IncorrectCount, 1)
	}
}

func TestSurveyMetrics(t *testing.T) {
	s := func(email, course, question, answer string) domain.SurveyRecord {
		return domain.SurveyRecord{Email: email, CourseName: course, Question: question, Answer: answer}
	}
	ds := &domain.Datasets{Surveys: []domain.SurveyRecord{
		s("ana@x.com", "Calidad", "¿Qué mejorarías?", "contenido excelente, más ejemplos"),
		s("luis@x.com", "Calidad", "¿Qué mejorarías?", "más ejemplos por favor"),
		s("ana@x.com", "Seguridad", "¿Comentarios?", "   "),
	}}
	sm := Compute(ds).SurveyMetrics
	require.NotNil(t, sm)

	assert.Equal(t, 3, sm.TotalResponses)
	assert.Equal(t, 2, sm.UniqueRespondents)

	require.Len(t, sm.ResponsesByCourse, 2)
	assert.Equal(t, domain.ResponseCount{Name: "Calidad", Count: 2}, sm.ResponsesByCourse[0])

	require.Len(t, sm.GroupedQuestions, 1, "questions with only blank answers are dropped")
	assert.Equal(t, "¿Qué mejorarías?", sm.GroupedQuestions[0].Question)
	assert.Len(t, sm.GroupedQuestions[0].Answers, 2)

	// "más" is a stop word; "ejemplos" survives and appears twice.
	var ejemplos *domain.WordCount
	for i := range sm.TopWords {
		assert.NotContains(t, []string{"más", "por"}, sm.TopWords[i].Text)
		if sm.TopWords[i].Text == "ejemplos" {
			ejemplos = &sm.TopWords[i]
		}
	}
	require.NotNil(t, ejemplos)
	assert.Equal(t, 2, ejemplos.Value)
}

func TestMultipleChoiceMetrics(t *testing.T) {
	mc := func(email, question, choice string) domain.MultipleChoiceRecord {
		return domain.MultipleChoiceRecord{Email: email, CourseName: "Calidad", Question: question, Choice: choice}
	}
	ds := &domain.Datasets{MultipleChoice: []domain.MultipleChoiceRecord{
		mc("a@x.com", "¿Recomendarías?", "Sí"),
		mc("b@x.com", "¿Recomendarías?", "Sí"),
		mc("c@x.com", "¿Recomendarías?", "No"),
		mc("a@x.com", "¿Volverías?", "  "),
	}}
	m := Compute(ds).MultipleChoiceMetrics
	require.NotNil(t, m)

	assert.Equal(t, 4, m.TotalResponses)
	assert.Equal(t, 3, m.UniqueRespondents)
	require.Len(t, m.QuestionsAnalysis, 2)

	first := m.QuestionsAnalysis[0]
	assert.Equal(t, "¿Recomendarías?", first.Question)
	assert.Equal(t, 3, first.TotalAnswers)
	require.Len(t, first.Distribution, 2)
	assert.Equal(t, domain.ChoiceCount{Name: "Sí", Value: 2}, first.Distribution[0], "sorted descending")

	second := m.QuestionsAnalysis[1]
	require.Len(t, second.Distribution, 1)
	assert.Equal(t, "Sin respuesta", second.Distribution[0].Name, "blank choices map to Sin respuesta")
}

func TestComputeIsIdempotent(t *testing.T) {
	ds := &domain.Datasets{
		Training: []domain.TrainingRecord{
			trainingRecord(func(r *domain.TrainingRecord) {
				r.Progress = 0.7
				r.CourseCompletedRaw = "Si"
				r.Status = domain.EnrollmentCompleted
				r.CompletionDate = "2024-04-01"
			}),
		},
		Evaluations: []domain.EvaluationRecord{
			{UserName: "Ana", Email: "ana@x.com", Attempts: 2, Score: 80, Status: "Aprobado"},
		},
		Questions: []domain.QuestionRecord{
			{Question: "q", Status: domain.AnswerIncorrect},
		},
		Surveys: []domain.SurveyRecord{
			{Email: "ana@x.com", CourseName: "Calidad", Question: "q", Answer: "respuesta interesante"},
		},
		MultipleChoice: []domain.MultipleChoiceRecord{
			{Email: "ana@x.com", CourseName: "Calidad", Question: "q", Choice: "Sí"},
		},
	}

	first := Compute(ds)
	second := Compute(ds)
	assert.Equal(t, first, second, "same input must yield a deep-equal snapshot")
}

func TestComputeTabPredicates(t *testing.T) {
	m := Compute(&domain.Datasets{
		Training:    []domain.TrainingRecord{trainingRecord(nil)},
		Evaluations: []domain.EvaluationRecord{{UserName: "A", Email: "a@x.com", Attempts: 1}},
	})
	assert.Equal(t, []string{domain.TabGeneral, domain.TabEvaluations}, m.AvailableTabs())
}
