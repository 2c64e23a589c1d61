package domain

// Dataset identifies one of the five logical input categories found in a
// training-program workbook. Only DatasetCourses is mandatory; the others are
// skipped when no worksheet matches.
type Dataset string

const (
	DatasetCourses        Dataset = "courses"
	DatasetEvaluations    Dataset = "evaluations"
	DatasetQuestions      Dataset = "questions"
	DatasetOpenSurvey     Dataset = "open_survey"
	DatasetMultipleChoice Dataset = "multiple_choice"
)

// EnrollmentStatus is the derived status of one (user, course) enrollment.
type EnrollmentStatus string

const (
	EnrollmentCompleted  EnrollmentStatus = "Completado"
	EnrollmentInProgress EnrollmentStatus = "En Progreso"
	EnrollmentNotStarted EnrollmentStatus = "No Iniciado"
	EnrollmentFailed     EnrollmentStatus = "Reprobado"
)

// AnswerStatus classifies a single exam answer.
type AnswerStatus string

const (
	AnswerCorrect   AnswerStatus = "Correcta"
	AnswerIncorrect AnswerStatus = "Incorrecta"
	AnswerUnknown   AnswerStatus = "Desconocido"
)

// TrainingRecord is one row of the courses sheet: a single (user, course)
// enrollment. Progress keeps the raw scale from the source file; the
// aggregator decides once per collection whether values are 0-1 fractions or
// 0-100 percentages.
type TrainingRecord struct {
	ID                  string           `json:"id"`
	EmployeeName        string           `json:"employee_name"`
	Department          string           `json:"department"`
	CourseName          string           `json:"course_name"`
	Status              EnrollmentStatus `json:"status"`
	CourseCompletedRaw  string           `json:"course_completed_raw"`
	CertificateObtained string           `json:"certificate_obtained"`
	Score               float64          `json:"score"`
	Progress            float64          `json:"progress"`
	DateAssigned        string           `json:"date_assigned"`
	CompletionDate      string           `json:"completion_date,omitempty"`
	ReproductionHours   float64          `json:"reproduction_hours"`
}

// EvaluationRecord summarizes one user's exam attempts. Email is the
// deduplication key; when it is empty the user name stands in for it.
type EvaluationRecord struct {
	UserName         string  `json:"user_name"`
	Email            string  `json:"email"`
	Attempts         int     `json:"attempts"`
	FirstAttemptDate string  `json:"first_attempt_date"`
	LastAttemptDate  string  `json:"last_attempt_date"`
	CorrectAnswers   int     `json:"correct_answers"`
	IncorrectAnswers int     `json:"incorrect_answers"`
	TotalQuestions   int     `json:"total_questions"`
	Score            float64 `json:"score"`
	Status           string  `json:"status"`
	Duration         string  `json:"duration"`
	CourseName       string  `json:"course_name"`
}

// QuestionRecord is one (user, question) answer event from the final exam.
type QuestionRecord struct {
	UserName   string       `json:"user_name"`
	Email      string       `json:"email"`
	Question   string       `json:"question"`
	UserAnswer string       `json:"user_answer"`
	Status     AnswerStatus `json:"status"`
	CourseName string       `json:"course_name"`
}

// SurveyRecord is one open-text survey answer.
type SurveyRecord struct {
	Email      string `json:"email"`
	CourseName string `json:"course_name"`
	SurveyID   string `json:"survey_id"`
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// MultipleChoiceRecord is one structured survey answer.
type MultipleChoiceRecord struct {
	Email      string `json:"email"`
	CourseName string `json:"course_name"`
	SurveyID   string `json:"survey_id"`
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Choice     string `json:"choice"`
}

// Datasets bundles the five canonical record collections parsed from one
// workbook. Optional collections are empty (not nil-checked anywhere) when
// their worksheet is absent.
type Datasets struct {
	Training       []TrainingRecord       `json:"training"`
	Evaluations    []EvaluationRecord     `json:"evaluations"`
	Questions      []QuestionRecord       `json:"questions"`
	Surveys        []SurveyRecord         `json:"surveys"`
	MultipleChoice []MultipleChoiceRecord `json:"multiple_choice"`
}
