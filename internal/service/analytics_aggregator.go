package service

import (
	"quiz_agent_backend/internal/model"
)

// ScoreBucketLabels 成绩分布区间，按上界归档
var ScoreBucketLabels = []string{"0-20", "21-40", "41-60", "61-80", "81-100"}

type PerformanceStats struct {
	TotalAttempts  int     `json:"totalAttempts"`
	PassedAttempts int     `json:"passedAttempts"`
	AverageScore   float64 `json:"averageScore"`
	PassRate       float64 `json:"passRate"`
}

type AnalyticsSummary struct {
	PerformanceStats
	BestScore             float64                     `json:"bestScore"`
	WorstScore            float64                     `json:"worstScore"`
	UniqueStudents        int                         `json:"uniqueStudents"`
	UniqueQuizzes         int                         `json:"uniqueQuizzes"`
	GradeDistribution     map[string]int              `json:"gradeDistribution"`
	ScoreDistribution     map[string]int              `json:"scoreDistribution"`
	SubjectPerformance    map[string]PerformanceStats `json:"subjectPerformance"`
	DifficultyPerformance map[string]PerformanceStats `json:"difficultyPerformance"`
}

type performanceAcc struct {
	count  int
	passed int
	sum    float64
}

func (a *performanceAcc) add(r *model.QuizResult) {
	a.count++
	a.sum += r.Percentage
	if r.Passed {
		a.passed++
	}
}

func (a *performanceAcc) stats() PerformanceStats {
	s := PerformanceStats{TotalAttempts: a.count, PassedAttempts: a.passed}
	if a.count > 0 {
		s.AverageScore = roundTo2(a.sum / float64(a.count))
		s.PassRate = roundTo2(100 * float64(a.passed) / float64(a.count))
	}
	return s
}

// AnalyticsAggregator 逐条累加成绩，只保留计数和总和，顺序无关
type AnalyticsAggregator struct {
	overall      performanceAcc
	best, worst  float64
	grades       map[string]int
	buckets      [5]int
	subjects     map[string]*performanceAcc
	difficulties map[string]*performanceAcc
	students     map[uint]struct{}
	quizzes      map[string]struct{}
}

func NewAnalyticsAggregator() *AnalyticsAggregator {
	return &AnalyticsAggregator{
		grades:       make(map[string]int),
		subjects:     make(map[string]*performanceAcc),
		difficulties: make(map[string]*performanceAcc),
		students:     make(map[uint]struct{}),
		quizzes:      make(map[string]struct{}),
	}
}

func (a *AnalyticsAggregator) Add(r *model.QuizResult) {
	if a.overall.count == 0 || r.Percentage > a.best {
		a.best = r.Percentage
	}
	if a.overall.count == 0 || r.Percentage < a.worst {
		a.worst = r.Percentage
	}
	a.overall.add(r)

	a.grades[r.GradeLetter]++
	a.buckets[scoreBucket(r.Percentage)]++
	groupAdd(a.subjects, r.Subject, r)
	groupAdd(a.difficulties, string(r.Difficulty), r)
	a.students[r.StudentID] = struct{}{}
	a.quizzes[r.QuizID] = struct{}{}
}

func (a *AnalyticsAggregator) Summary() AnalyticsSummary {
	s := AnalyticsSummary{
		PerformanceStats:      a.overall.stats(),
		BestScore:             roundTo2(a.best),
		WorstScore:            roundTo2(a.worst),
		UniqueStudents:        len(a.students),
		UniqueQuizzes:         len(a.quizzes),
		GradeDistribution:     make(map[string]int, len(a.grades)),
		ScoreDistribution:     make(map[string]int, len(ScoreBucketLabels)),
		SubjectPerformance:    groupStats(a.subjects),
		DifficultyPerformance: groupStats(a.difficulties),
	}
	for k, v := range a.grades {
		s.GradeDistribution[k] = v
	}
	for i, label := range ScoreBucketLabels {
		s.ScoreDistribution[label] = a.buckets[i]
	}
	return s
}

// AggregateResults 一次性汇总
func AggregateResults(results []model.QuizResult) AnalyticsSummary {
	agg := NewAnalyticsAggregator()
	for i := range results {
		agg.Add(&results[i])
	}
	return agg.Summary()
}

func scoreBucket(p float64) int {
	switch {
	case p <= 20:
		return 0
	case p <= 40:
		return 1
	case p <= 60:
		return 2
	case p <= 80:
		return 3
	default:
		return 4
	}
}

func groupAdd(groups map[string]*performanceAcc, key string, r *model.QuizResult) {
	if key == "" {
		key = "general"
	}
	acc, ok := groups[key]
	if !ok {
		acc = &performanceAcc{}
		groups[key] = acc
	}
	acc.add(r)
}

func groupStats(groups map[string]*performanceAcc) map[string]PerformanceStats {
	out := make(map[string]PerformanceStats, len(groups))
	for k, acc := range groups {
		out[k] = acc.stats()
	}
	return out
}
