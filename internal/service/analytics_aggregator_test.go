package service

import (
	"quiz_agent_backend/internal/model"
	"testing"
)

func resultFor(student uint, quizID, subject string, pct float64) model.QuizResult {
	_, letter := ClassifyGrade(pct)
	return model.QuizResult{
		QuizID:      quizID,
		StudentID:   student,
		Subject:     subject,
		Difficulty:  model.Easy,
		Percentage:  pct,
		GradeLetter: letter,
		Passed:      IsPassing(pct),
	}
}

func TestAggregateResults(t *testing.T) {
	results := []model.QuizResult{
		resultFor(1, "q1", "math", 100),
		resultFor(1, "q2", "math", 20),
		resultFor(2, "q1", "", 60),
		resultFor(3, "q3", "history", 80.5),
	}
	s := AggregateResults(results)

	if s.TotalAttempts != 4 || s.PassedAttempts != 3 {
		t.Fatalf("attempts = %d/%d", s.PassedAttempts, s.TotalAttempts)
	}
	if s.AverageScore != 65.13 {
		t.Errorf("average = %v, want 65.13", s.AverageScore)
	}
	if s.PassRate != 75 {
		t.Errorf("pass rate = %v", s.PassRate)
	}
	if s.BestScore != 100 || s.WorstScore != 20 {
		t.Errorf("best/worst = %v/%v", s.BestScore, s.WorstScore)
	}
	if s.UniqueStudents != 3 || s.UniqueQuizzes != 3 {
		t.Errorf("unique students/quizzes = %d/%d", s.UniqueStudents, s.UniqueQuizzes)
	}

	wantBuckets := map[string]int{"0-20": 1, "21-40": 0, "41-60": 1, "61-80": 0, "81-100": 2}
	for label, n := range wantBuckets {
		if s.ScoreDistribution[label] != n {
			t.Errorf("bucket %s = %d, want %d", label, s.ScoreDistribution[label], n)
		}
	}
	if s.GradeDistribution["A+"] != 1 || s.GradeDistribution["F"] != 1 || s.GradeDistribution["D-"] != 1 || s.GradeDistribution["B-"] != 1 {
		t.Errorf("grades = %v", s.GradeDistribution)
	}
	if got := s.SubjectPerformance["math"]; got.TotalAttempts != 2 || got.AverageScore != 60 || got.PassRate != 50 {
		t.Errorf("math = %+v", got)
	}
	if got := s.SubjectPerformance["general"]; got.TotalAttempts != 1 {
		t.Errorf("results without a subject should be grouped as general: %+v", s.SubjectPerformance)
	}
}

func TestAggregateResultsEmpty(t *testing.T) {
	s := AggregateResults(nil)
	if s.TotalAttempts != 0 || s.AverageScore != 0 || s.PassRate != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	if len(s.ScoreDistribution) != len(ScoreBucketLabels) {
		t.Errorf("score distribution should list every bucket: %v", s.ScoreDistribution)
	}
}

func TestAggregatorOrderIndependent(t *testing.T) {
	results := []model.QuizResult{
		resultFor(1, "q1", "math", 45),
		resultFor(2, "q1", "math", 90),
		resultFor(3, "q2", "science", 61),
	}
	reversed := []model.QuizResult{results[2], results[1], results[0]}

	a, b := AggregateResults(results), AggregateResults(reversed)
	if a.AverageScore != b.AverageScore || a.BestScore != b.BestScore || a.WorstScore != b.WorstScore {
		t.Errorf("order changed the summary: %+v vs %+v", a, b)
	}
}

func TestLatest(t *testing.T) {
	base := resultFor(1, "q", "math", 50)
	var results []model.QuizResult
	for i := 0; i < 12; i++ {
		r := base
		r.ID = string(rune('a' + i))
		r.SubmittedAt = r.SubmittedAt.AddDate(0, 0, i)
		results = append(results, r)
	}

	got := latest(results, 10)
	if len(got) != 10 {
		t.Fatalf("got %d results", len(got))
	}
	if got[0].ID != "l" || got[9].ID != "c" {
		t.Errorf("order = %s..%s", got[0].ID, got[9].ID)
	}
	if results[0].ID != "a" {
		t.Error("latest modified its input")
	}
}
