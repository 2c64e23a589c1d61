package ingest

import (
	"fmt"
	"strings"

	"trainpulse/pkg/contracts/domain"
)

// Placeholder defaults. Downstream grouping must never see an empty key.
const (
	defaultDepartment = "General"
	defaultCourse     = "General"
	defaultCourseFull = "Curso General"
	defaultQuestion   = "Sin pregunta"
	defaultUnknown    = "Desconocido"
	defaultAnon       = "Anon"
	defaultChoice     = "Sin elección"
)

// normalizeTraining maps one courses-sheet row onto a TrainingRecord. idx is
// the zero-based data row index, used only to synthesize an ID when the sheet
// has none.
func normalizeTraining(row Row, idx int) domain.TrainingRecord {
	progress := 0.0
	if raw, ok := row.Resolve("% de Progreso del Curso", "Progreso", "% Progreso"); ok {
		progress = parsePercent(raw)
	}

	hours := 0.0
	if raw, ok := row.Resolve("Horas de Reproducción", "Duración Curso", "Duración"); ok {
		hours = parseDuration(raw)
	}

	completed := strings.TrimSpace(stringOr(row, "No", "Curso completado", "Completado"))
	cert := strings.TrimSpace(stringOr(row, "No", "Certificado obtenido", "Certificado"))

	score := 0.0
	if raw, ok := row.Resolve("Estado evaluación - Mejor intento", "Puntaje", "Nota"); ok {
		score = parseScore(raw)
	}

	state, _ := row.Resolve("Estado Curso", "Estado")

	return domain.TrainingRecord{
		ID:                  stringOr(row, fmt.Sprintf("row-%d", idx), "ID Curso", "ID"),
		EmployeeName:        stringOr(row, defaultUnknown, "Usuario", "Nombre", "Email"),
		Department:          stringOr(row, defaultDepartment, "Info extra", "País", "Departamento"),
		CourseName:          stringOr(row, defaultCourseFull, "Curso", "Nombre del curso"),
		Status:              classifyEnrollment(completed, progress, state),
		CourseCompletedRaw:  completed,
		CertificateObtained: cert,
		Score:               score,
		Progress:            progress,
		DateAssigned:        formatDate(stringOr(row, "", "Fecha de inscripción", "Fecha")),
		CompletionDate:      formatDate(stringOr(row, "", "Fecha de Completitud", "F. Completitud")),
		ReproductionHours:   hours,
	}
}

// classifyEnrollment derives the enrollment status. An affirmative completion
// flag always wins, regardless of a stale state column.
func classifyEnrollment(completedFlag string, progress float64, state string) domain.EnrollmentStatus {
	if isAffirmative(completedFlag) {
		return domain.EnrollmentCompleted
	}
	if progress > 0 {
		return domain.EnrollmentInProgress
	}
	lower := strings.ToLower(state)
	if strings.Contains(lower, "reprobado") || strings.Contains(lower, "fail") {
		return domain.EnrollmentFailed
	}
	return domain.EnrollmentNotStarted
}

// normalizeEvaluation maps one exam-results row onto an EvaluationRecord.
func normalizeEvaluation(row Row) domain.EvaluationRecord {
	score := 0.0
	if raw, ok := row.Resolve("Puntaje - Mejor intento", "Puntaje", "Nota"); ok {
		score = parsePercent(raw)
	}

	attempts := 1
	if raw, ok := row.Resolve("Cantidad de intentos rendidos", "Intentos"); ok {
		attempts = parseIntOr(raw, 1)
	}

	return domain.EvaluationRecord{
		UserName:         stringOr(row, defaultAnon, "Usuario", "Nombre"),
		Email:            stringOr(row, "", "Email", "Correo"),
		Attempts:         attempts,
		FirstAttemptDate: formatDate(stringOr(row, "", "Fecha del primer intento", "Fecha Inicio")),
		LastAttemptDate:  formatDate(stringOr(row, "", "Fecha del último intento", "Fecha Fin")),
		CorrectAnswers:   resolveInt(row, 0, "Respuestas correctas - Mejor intento", "Correctas"),
		IncorrectAnswers: resolveInt(row, 0, "Respuestas erróneas - Mejor intento", "Erróneas", "Incorrectas"),
		TotalQuestions:   resolveInt(row, 0, "Total preguntas - Mejor intento", "Total Preguntas"),
		Score:            score,
		Status:           stringOr(row, defaultUnknown, "Estado evaluación - Mejor intento", "Estado"),
		Duration:         stringOr(row, "", "Duración de resolución", "Duración"),
		CourseName:       stringOr(row, defaultCourse, "Nombre del curso", "Curso"),
	}
}

func resolveInt(row Row, def int, aliases ...string) int {
	raw, ok := row.Resolve(aliases...)
	if !ok {
		return def
	}
	return parseIntOr(raw, def)
}

// normalizeQuestion maps one per-question answer row onto a QuestionRecord.
func normalizeQuestion(row Row) domain.QuestionRecord {
	status, _ := row.Resolve("Estado", "Resultado")
	return domain.QuestionRecord{
		UserName:   stringOr(row, defaultAnon, "Usuario", "Nombre"),
		Email:      stringOr(row, "", "Email", "Correo"),
		Question:   stringOr(row, defaultQuestion, "Pregunta"),
		UserAnswer: stringOr(row, "", "Respuesta del último intento", "Respuesta", "Comentario"),
		Status:     classifyAnswer(status),
		CourseName: stringOr(row, defaultCourse, "Nombre del curso", "Curso"),
	}
}

// classifyAnswer matches the raw status by substring. "incorrecta" is checked
// before "correcta" since the former contains the latter; a status carrying
// both therefore classifies as Incorrect.
func classifyAnswer(raw string) domain.AnswerStatus {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(lower, "incorrecta") || lower == "incorrect":
		return domain.AnswerIncorrect
	case strings.Contains(lower, "correcta") || lower == "correct":
		return domain.AnswerCorrect
	default:
		return domain.AnswerUnknown
	}
}

// normalizeSurvey maps one open-text survey row onto a SurveyRecord. The "F"
// alias addresses the answer column by position in exports that ship it with
// a blank header.
func normalizeSurvey(row Row) domain.SurveyRecord {
	return domain.SurveyRecord{
		Email:      stringOr(row, defaultAnon, "Email", "Correo", "Usuario"),
		CourseName: stringOr(row, defaultCourse, "Curso", "Nombre del curso"),
		SurveyID:   stringOr(row, "", "Id Survey", "Id Encuesta"),
		QuestionID: stringOr(row, "", "Id Pregunta"),
		Question:   stringOr(row, defaultQuestion, "Pregunta"),
		Answer:     stringOr(row, "", "Respuesta", "Comentario", "Texto", "Respuesta Abierta", "F"),
	}
}

// normalizeMultipleChoice maps one structured survey row onto a
// MultipleChoiceRecord.
func normalizeMultipleChoice(row Row) domain.MultipleChoiceRecord {
	return domain.MultipleChoiceRecord{
		Email:      stringOr(row, defaultAnon, "Email", "Correo", "Usuario"),
		CourseName: stringOr(row, defaultCourse, "Curso", "Nombre del curso"),
		SurveyID:   stringOr(row, "", "Id Survey", "Id Encuesta"),
		QuestionID: stringOr(row, "", "Id Pregunta"),
		Question:   stringOr(row, defaultQuestion, "Pregunta"),
		Choice:     stringOr(row, defaultChoice, "Elección", "Respuesta", "Opción"),
	}
}
