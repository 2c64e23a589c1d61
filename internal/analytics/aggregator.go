package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"trainpulse/pkg/contracts/domain"
)

// spanishMonths are the short month names used for monthly-progress bucket
// labels.
var spanishMonths = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// Compute derives the full dashboard metrics snapshot from the five
// canonical record collections. It is pure: the same input always yields a
// deep-equal snapshot, and the input collections are never mutated. The four
// optional metric groups are computed independently and set only when their
// source collection is non-empty.
func Compute(ds *domain.Datasets) *domain.DashboardMetrics {
	m := &domain.DashboardMetrics{PrimaryCourseName: "General"}

	computeTrainingMetrics(m, ds.Training)
	if len(ds.Evaluations) > 0 {
		m.EvaluationMetrics = computeEvaluationMetrics(ds.Evaluations)
	}
	if len(ds.Questions) > 0 {
		m.QuestionMetrics = computeQuestionMetrics(ds.Questions)
	}
	if len(ds.Surveys) > 0 {
		m.SurveyMetrics = computeSurveyMetrics(ds.Surveys)
	}
	if len(ds.MultipleChoice) > 0 {
		m.MultipleChoiceMetrics = computeMultipleChoiceMetrics(ds.MultipleChoice)
	}
	return m
}

func computeTrainingMetrics(m *domain.DashboardMetrics, data []domain.TrainingRecord) {
	employees := make(map[string]struct{}, len(data))
	for _, d := range data {
		employees[d.EmployeeName] = struct{}{}
	}
	m.TotalEmployees = len(employees)

	// Progress scale is a single global decision: when the maximum raw value
	// is a fraction, the whole dataset is treated as 0-1 scaled.
	var maxProgress float64
	for _, d := range data {
		if d.Progress > maxProgress {
			maxProgress = d.Progress
		}
	}
	isFractional := maxProgress > 0 && maxProgress <= 1.0

	normalized := make([]float64, len(data))
	var totalProgress, totalHours float64
	for i, d := range data {
		p := d.Progress
		if isFractional && p <= 1 {
			p *= 100
		}
		normalized[i] = p
		totalProgress += p
		totalHours += d.ReproductionHours
	}
	if len(data) > 0 {
		m.CompletionRate = totalProgress / float64(len(data))
		m.AverageTrainingHours = totalHours / float64(len(data))
	}

	var issued, completedCount int
	for _, d := range data {
		if isAffirmative(d.CertificateObtained) {
			issued++
		}
		if isAffirmative(d.CourseCompletedRaw) {
			completedCount++
		}
	}
	m.CertificatesIssued = issued

	m.CompletionDistribution = dropZeroSlices([]domain.ChartSlice{
		{Name: "Completado (SI)", Value: completedCount, Color: domain.ColorSuccess},
		{Name: "No Completado", Value: len(data) - completedCount, Color: domain.ColorDanger},
	})
	m.CertificateDistribution = dropZeroSlices([]domain.ChartSlice{
		{Name: "Con Certificado", Value: issued, Color: domain.ColorInfo},
		{Name: "Sin Certificado", Value: len(data) - issued, Color: domain.ColorMuted},
	})

	m.DepartmentPerformance = computeDepartmentPerformance(data, normalized)
	m.TopCourses = computeTopCourses(data)
	m.MonthlyProgress = computeMonthlyProgress(data)
	if len(m.TopCourses) > 0 {
		m.PrimaryCourseName = m.TopCourses[0].Name
	}
}

func computeDepartmentPerformance(data []domain.TrainingRecord, normalized []float64) []domain.DepartmentPerformance {
	type deptAccum struct {
		progressSum float64
		count       int
		scoreSum    float64
		scoreCount  int
	}
	order := make([]string, 0)
	accum := make(map[string]*deptAccum)
	for i, d := range data {
		a, ok := accum[d.Department]
		if !ok {
			a = &deptAccum{}
			accum[d.Department] = a
			order = append(order, d.Department)
		}
		a.progressSum += normalized[i]
		a.count++
		if d.Status == domain.EnrollmentCompleted || d.Score > 0 {
			a.scoreSum += d.Score
			a.scoreCount++
		}
	}

	perf := make([]domain.DepartmentPerformance, 0, len(order))
	for _, dept := range order {
		a := accum[dept]
		rate := 0.0
		if a.count > 0 {
			rate = a.progressSum / float64(a.count)
		}
		// Denominator floored at 1: a department with no scored records
		// averages to zero instead of dividing by zero.
		scoreDiv := a.scoreCount
		if scoreDiv == 0 {
			scoreDiv = 1
		}
		perf = append(perf, domain.DepartmentPerformance{
			Name:           dept,
			AvgScore:       a.scoreSum / float64(scoreDiv),
			CompletionRate: rate,
		})
	}
	sort.SliceStable(perf, func(i, j int) bool {
		return perf[i].CompletionRate > perf[j].CompletionRate
	})
	return perf
}

func computeTopCourses(data []domain.TrainingRecord) []domain.CourseCount {
	order := make([]string, 0)
	counts := make(map[string]int)
	for _, d := range data {
		if _, ok := counts[d.CourseName]; !ok {
			order = append(order, d.CourseName)
		}
		counts[d.CourseName]++
	}
	top := make([]domain.CourseCount, 0, len(order))
	for _, name := range order {
		top = append(top, domain.CourseCount{Name: name, Students: counts[name]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Students > top[j].Students })
	if len(top) > 5 {
		top = top[:5]
	}
	return top
}

// computeMonthlyProgress buckets completed enrollments by the short Spanish
// month name of the completion date, falling back to the assignment date.
// Buckets keep first-observed order; records with no parseable date are
// skipped.
func computeMonthlyProgress(data []domain.TrainingRecord) []domain.MonthlyCount {
	order := make([]string, 0)
	counts := make(map[string]int)
	for _, d := range data {
		if d.Status != domain.EnrollmentCompleted {
			continue
		}
		dateStr := d.CompletionDate
		if dateStr == "" {
			dateStr = d.DateAssigned
		}
		if dateStr == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		month := spanishMonths[t.Month()-1]
		if _, ok := counts[month]; !ok {
			order = append(order, month)
		}
		counts[month]++
	}
	monthly := make([]domain.MonthlyCount, 0, len(order))
	for _, month := range order {
		monthly = append(monthly, domain.MonthlyCount{Month: month, Completed: counts[month]})
	}
	return monthly
}

// computeEvaluationMetrics deduplicates attempts per user key (email, or user
// name when the email is blank; case-insensitive, trimmed), keeping the
// attempt with the highest score, then derives all evaluation statistics
// from the deduplicated set.
func computeEvaluationMetrics(evData []domain.EvaluationRecord) *domain.EvaluationMetrics {
	order := make([]string, 0)
	best := make(map[string]domain.EvaluationRecord)
	for _, e := range evData {
		key := e.Email
		if key == "" {
			key = e.UserName
		}
		key = strings.ToLower(strings.TrimSpace(key))
		existing, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = e
		} else if e.Score > existing.Score {
			best[key] = e
		}
	}

	deduped := make([]domain.EvaluationRecord, 0, len(order))
	for _, key := range order {
		deduped = append(deduped, best[key])
	}

	total := len(deduped)
	var attemptSum, scoreSum float64
	var correct, incorrect, passed int
	attemptOrder := make([]string, 0)
	attemptCounts := make(map[string]int)
	for _, e := range deduped {
		attemptSum += float64(e.Attempts)
		scoreSum += e.Score
		correct += e.CorrectAnswers
		incorrect += e.IncorrectAnswers
		if isPassing(e) {
			passed++
		}
		bucket := "5+"
		if e.Attempts < 5 {
			bucket = fmt.Sprintf("%d", e.Attempts)
		}
		if _, ok := attemptCounts[bucket]; !ok {
			attemptOrder = append(attemptOrder, bucket)
		}
		attemptCounts[bucket]++
	}

	attempts := make([]domain.AttemptBucket, 0, len(attemptOrder))
	for _, bucket := range attemptOrder {
		attempts = append(attempts, domain.AttemptBucket{Attempts: bucket, Count: attemptCounts[bucket]})
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		if attempts[i].Attempts == "5+" {
			return false
		}
		if attempts[j].Attempts == "5+" {
			return true
		}
		ni, _ := strconv.Atoi(attempts[i].Attempts)
		nj, _ := strconv.Atoi(attempts[j].Attempts)
		return ni < nj
	})

	performers := make([]domain.Performer, 0, total)
	for _, e := range deduped {
		performers = append(performers, domain.Performer{Name: e.UserName, Score: e.Score, Course: e.CourseName})
	}
	sort.SliceStable(performers, func(i, j int) bool { return performers[i].Score > performers[j].Score })

	return &domain.EvaluationMetrics{
		TotalEvaluations: total,
		AvgAttempts:      attemptSum / float64(total),
		AvgScore:         scoreSum / float64(total),
		PassRate:         float64(passed) / float64(total) * 100,
		GlobalAccuracy:   domain.Accuracy{Correct: correct, Incorrect: incorrect},
		PassDistribution: dropZeroSlices([]domain.ChartSlice{
			{Name: "Aprobados", Value: passed, Color: domain.ColorSuccess},
			{Name: "Reprobados", Value: total - passed, Color: domain.ColorDanger},
		}),
		AttemptsDistribution: attempts,
		TopPerformers:        performers,
	}
}

// isPassing reports whether an evaluation passes: the status string signals
// approval, or the score clears 70 regardless of status.
func isPassing(e domain.EvaluationRecord) bool {
	status := strings.ToLower(e.Status)
	return strings.Contains(status, "aprobado") || strings.Contains(status, "pass") || e.Score >= 70
}

// computeQuestionMetrics groups answers by exact trimmed question text and
// ranks questions by failure rate. Only questions with at least one
// incorrect answer are kept, capped at the 10 hardest.
func computeQuestionMetrics(qaData []domain.QuestionRecord) *domain.QuestionMetrics {
	type questionAccum struct {
		total     int
		incorrect int
		course    string
	}
	order := make([]string, 0)
	accum := make(map[string]*questionAccum)
	for _, q := range qaData {
		key := strings.TrimSpace(q.Question)
		a, ok := accum[key]
		if !ok {
			a = &questionAccum{course: q.CourseName}
			accum[key] = a
			order = append(order, key)
		}
		a.total++
		if q.Status == domain.AnswerIncorrect {
			a.incorrect++
		}
	}

	hardest := make([]domain.QuestionDifficulty, 0, len(order))
	for _, question := range order {
		a := accum[question]
		if a.total == 0 || a.incorrect == 0 {
			continue
		}
		hardest = append(hardest, domain.QuestionDifficulty{
			Question:       question,
			Course:         a.course,
			FailureRate:    float64(a.incorrect) / float64(a.total) * 100,
			IncorrectCount: a.incorrect,
			TotalAttempts:  a.total,
		})
	}
	sort.SliceStable(hardest, func(i, j int) bool { return hardest[i].FailureRate > hardest[j].FailureRate })
	if len(hardest) > 10 {
		hardest = hardest[:10]
	}

	return &domain.QuestionMetrics{
		TotalQuestionsAnswered: len(qaData),
		HardestQuestions:       hardest,
	}
}

// computeSurveyMetrics derives respondent counts, per-course response
// tallies, grouped answers per question and the word-frequency table from
// the open-text survey collection.
func computeSurveyMetrics(surveyData []domain.SurveyRecord) *domain.SurveyMetrics {
	respondents := make(map[string]struct{})
	courseOrder := make([]string, 0)
	courseCounts := make(map[string]int)
	questionOrder := make([]string, 0)
	type answerGroup struct {
		course  string
		answers []string
	}
	groups := make(map[string]*answerGroup)
	words := newWordCounter()

	for _, s := range surveyData {
		respondents[s.Email] = struct{}{}
		if _, ok := courseCounts[s.CourseName]; !ok {
			courseOrder = append(courseOrder, s.CourseName)
		}
		courseCounts[s.CourseName]++

		g, ok := groups[s.Question]
		if !ok {
			g = &answerGroup{course: s.CourseName}
			groups[s.Question] = g
			questionOrder = append(questionOrder, s.Question)
		}
		if strings.TrimSpace(s.Answer) != "" {
			g.answers = append(g.answers, s.Answer)
			words.Add(s.Answer)
		}
	}

	byCourse := make([]domain.ResponseCount, 0, len(courseOrder))
	for _, name := range courseOrder {
		byCourse = append(byCourse, domain.ResponseCount{Name: name, Count: courseCounts[name]})
	}
	sort.SliceStable(byCourse, func(i, j int) bool { return byCourse[i].Count > byCourse[j].Count })

	grouped := make([]domain.GroupedQuestion, 0, len(questionOrder))
	for _, question := range questionOrder {
		g := groups[question]
		if len(g.answers) == 0 {
			continue
		}
		grouped = append(grouped, domain.GroupedQuestion{Question: question, Course: g.course, Answers: g.answers})
	}

	return &domain.SurveyMetrics{
		TotalResponses:    len(surveyData),
		UniqueRespondents: len(respondents),
		ResponsesByCourse: byCourse,
		GroupedQuestions:  grouped,
		TopWords:          words.Top(50),
	}
}

// computeMultipleChoiceMetrics tallies choice counts per question, mapping a
// blank choice to "Sin respuesta", and sorts each question's distribution
// descending by count.
func computeMultipleChoiceMetrics(multiData []domain.MultipleChoiceRecord) *domain.MultipleChoiceMetrics {
	respondents := make(map[string]struct{})
	type choiceAccum struct {
		course      string
		choiceOrder []string
		counts      map[string]int
	}
	order := make([]string, 0)
	accum := make(map[string]*choiceAccum)

	for _, mc := range multiData {
		respondents[mc.Email] = struct{}{}
		key := strings.TrimSpace(mc.Question)
		a, ok := accum[key]
		if !ok {
			a = &choiceAccum{course: mc.CourseName, counts: make(map[string]int)}
			accum[key] = a
			order = append(order, key)
		}
		choice := strings.TrimSpace(mc.Choice)
		if choice == "" {
			choice = "Sin respuesta"
		}
		if _, ok := a.counts[choice]; !ok {
			a.choiceOrder = append(a.choiceOrder, choice)
		}
		a.counts[choice]++
	}

	analysis := make([]domain.ChoiceAnalysis, 0, len(order))
	for _, question := range order {
		a := accum[question]
		total := 0
		dist := make([]domain.ChoiceCount, 0, len(a.choiceOrder))
		for _, choice := range a.choiceOrder {
			total += a.counts[choice]
			dist = append(dist, domain.ChoiceCount{Name: choice, Value: a.counts[choice]})
		}
		sort.SliceStable(dist, func(i, j int) bool { return dist[i].Value > dist[j].Value })
		analysis = append(analysis, domain.ChoiceAnalysis{
			Question:     question,
			Course:       a.course,
			TotalAnswers: total,
			Distribution: dist,
		})
	}

	return &domain.MultipleChoiceMetrics{
		TotalResponses:    len(multiData),
		UniqueRespondents: len(respondents),
		QuestionsAnalysis: analysis,
	}
}

// dropZeroSlices removes zero-count buckets; chart layers must never render
// a zero-value slice.
func dropZeroSlices(slices []domain.ChartSlice) []domain.ChartSlice {
	out := slices[:0:0]
	for _, s := range slices {
		if s.Value > 0 {
			out = append(out, s)
		}
	}
	return out
}

// isAffirmative mirrors the ingest-side flag set; raw flag strings travel on
// the records so the aggregator re-checks them here.
var affirmative = map[string]bool{"si": true, "yes": true, "true": true, "completado": true}

func isAffirmative(v string) bool {
	return affirmative[strings.ToLower(strings.TrimSpace(v))]
}
