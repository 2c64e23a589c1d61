package domain

// Chart colors shared with the dashboard frontend.
const (
	ColorSuccess = "#10B981"
	ColorDanger  = "#EF4444"
	ColorInfo    = "#3B82F6"
	ColorMuted   = "#9CA3AF"
)

// Tab identifiers for the dashboard frontend. TabGeneral is always present;
// the rest exist only when their metric group was computed.
const (
	TabGeneral        = "general"
	TabEvaluations    = "evaluations"
	TabQuestions      = "questions"
	TabSurveys        = "surveys"
	TabMultipleChoice = "multiple_choice"
)

// ChartSlice is one bucket of a pie-style distribution. Distributions never
// carry zero-count slices.
type ChartSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// DepartmentPerformance holds per-department averages over TrainingRecords.
type DepartmentPerformance struct {
	Name           string  `json:"name"`
	AvgScore       float64 `json:"avg_score"`
	CompletionRate float64 `json:"completion_rate"`
}

// CourseCount is one entry of the top-courses ranking.
type CourseCount struct {
	Name     string `json:"name"`
	Students int    `json:"students"`
}

// MonthlyCount is one month bucket of completed enrollments. Buckets keep
// first-observed order, not calendar order.
type MonthlyCount struct {
	Month     string `json:"month"`
	Completed int    `json:"completed"`
}

// Accuracy is the summed correct/incorrect answer totals over the
// deduplicated evaluation set.
type Accuracy struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// AttemptBucket is one bucket of the attempts histogram ("1".."4", "5+").
type AttemptBucket struct {
	Attempts string `json:"attempts"`
	Count    int    `json:"count"`
}

// Performer is one entry of the score ranking.
type Performer struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Course string  `json:"course"`
}

// EvaluationMetrics covers the exam-result dataset after per-user
// deduplication (best attempt wins).
type EvaluationMetrics struct {
	TotalEvaluations     int             `json:"total_evaluations"`
	AvgAttempts          float64         `json:"avg_attempts"`
	AvgScore             float64         `json:"avg_score"`
	PassRate             float64         `json:"pass_rate"`
	GlobalAccuracy       Accuracy        `json:"global_accuracy"`
	PassDistribution     []ChartSlice    `json:"pass_distribution"`
	AttemptsDistribution []AttemptBucket `json:"attempts_distribution"`
	TopPerformers        []Performer     `json:"top_performers"`
}

// QuestionDifficulty is one entry of the hardest-questions ranking. Only
// questions with at least one incorrect answer appear.
type QuestionDifficulty struct {
	Question       string  `json:"question"`
	Course         string  `json:"course"`
	FailureRate    float64 `json:"failure_rate"`
	IncorrectCount int     `json:"incorrect_count"`
	TotalAttempts  int     `json:"total_attempts"`
}

// QuestionMetrics covers the per-question answer dataset.
type QuestionMetrics struct {
	TotalQuestionsAnswered int                  `json:"total_questions_answered"`
	HardestQuestions       []QuestionDifficulty `json:"hardest_questions"`
}

// ResponseCount is a per-course response tally.
type ResponseCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GroupedQuestion collects the non-empty free-text answers given to one
// survey question.
type GroupedQuestion struct {
	Question string   `json:"question"`
	Course   string   `json:"course"`
	Answers  []string `json:"answers"`
}

// WordCount is one entry of the word-frequency table.
type WordCount struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// SurveyMetrics covers the open-text survey dataset.
type SurveyMetrics struct {
	TotalResponses    int               `json:"total_responses"`
	UniqueRespondents int               `json:"unique_respondents"`
	ResponsesByCourse []ResponseCount   `json:"responses_by_course"`
	GroupedQuestions  []GroupedQuestion `json:"grouped_questions"`
	TopWords          []WordCount       `json:"top_words"`
}

// ChoiceCount is one choice label with its tally.
type ChoiceCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ChoiceAnalysis is the per-question choice distribution, sorted descending
// by count.
type ChoiceAnalysis struct {
	Question     string        `json:"question"`
	Course       string        `json:"course"`
	TotalAnswers int           `json:"total_answers"`
	Distribution []ChoiceCount `json:"distribution"`
}

// MultipleChoiceMetrics covers the structured survey dataset.
type MultipleChoiceMetrics struct {
	TotalResponses    int              `json:"total_responses"`
	UniqueRespondents int              `json:"unique_respondents"`
	QuestionsAnalysis []ChoiceAnalysis `json:"questions_analysis"`
}

// DashboardMetrics is the immutable aggregate snapshot produced by one
// pipeline run and consumed by all presentation collaborators. The four
// optional groups are nil exactly when their source dataset was empty.
type DashboardMetrics struct {
	TotalEmployees       int     `json:"total_employees"`
	CompletionRate       float64 `json:"completion_rate"`
	AverageTrainingHours float64 `json:"average_training_hours"`
	CertificatesIssued   int     `json:"certificates_issued"`

	CompletionDistribution  []ChartSlice            `json:"completion_distribution"`
	CertificateDistribution []ChartSlice            `json:"certificate_distribution"`
	DepartmentPerformance   []DepartmentPerformance `json:"department_performance"`
	TopCourses              []CourseCount           `json:"top_courses"`
	MonthlyProgress         []MonthlyCount          `json:"monthly_progress"`
	PrimaryCourseName       string                  `json:"primary_course_name"`

	EvaluationMetrics     *EvaluationMetrics     `json:"evaluation_metrics,omitempty"`
	QuestionMetrics       *QuestionMetrics       `json:"question_metrics,omitempty"`
	SurveyMetrics         *SurveyMetrics         `json:"survey_metrics,omitempty"`
	MultipleChoiceMetrics *MultipleChoiceMetrics `json:"multiple_choice_metrics,omitempty"`
}

// AvailableTabs reports which dashboard tabs have data behind them. Absent
// tabs render an empty-state placeholder, never an error.
func (m *DashboardMetrics) AvailableTabs() []string {
	tabs := []string{TabGeneral}
	if m.EvaluationMetrics != nil {
		tabs = append(tabs, TabEvaluations)
	}
	if m.QuestionMetrics != nil {
		tabs = append(tabs, TabQuestions)
	}
	if m.SurveyMetrics != nil {
		tabs = append(tabs, TabSurveys)
	}
	if m.MultipleChoiceMetrics != nil {
		tabs = append(tabs, TabMultipleChoice)
	}
	return tabs
}
