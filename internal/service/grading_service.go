package service

import (
	"fmt"
	"quiz_agent_backend/internal/model"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// GradingEngine 按答案键评分；只读 quiz，不会失败
type GradingEngine struct {
	now func() time.Time
}

func NewGradingEngine() *GradingEngine {
	return &GradingEngine{now: time.Now}
}

type bucketTotals map[string]*model.ScoreBucket

func (b bucketTotals) add(key string, earned, max int) {
	if key == "" {
		return
	}
	acc, ok := b[key]
	if !ok {
		acc = &model.ScoreBucket{}
		b[key] = acc
	}
	acc.Score += earned
	acc.MaxScore += max
}

func (b bucketTotals) breakdown() model.ScoreBreakdown {
	if len(b) == 0 {
		return nil
	}
	out := make(model.ScoreBreakdown, len(b))
	for k, acc := range b {
		out[k] = model.ScoreBucket{
			Score:      acc.Score,
			MaxScore:   acc.MaxScore,
			Percentage: percentOf(acc.Score, acc.MaxScore),
		}
	}
	return out
}

// Grade 带题目 ID 的答案按 ID 匹配，ID 不存在时跳过；未带 ID 的按位置匹配。
// 越界或重复作答的题目同样跳过，不计入满分。
// 比较规则：两侧去掉首尾空白后完全一致（区分大小写）。
func (e *GradingEngine) Grade(quiz *model.Quiz, sub model.Submission) *model.QuizResult {
	byID := make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		byID[q.ID] = i
	}

	graded := make([]*model.QuestionResult, len(quiz.Questions))
	chapters, topics, subtopics := bucketTotals{}, bucketTotals{}, bucketTotals{}
	score, maxScore := 0, 0

	for i, ans := range sub.Answers {
		idx := i
		if ans.QuestionID != "" {
			var ok bool
			if idx, ok = byID[ans.QuestionID]; !ok {
				continue
			}
		}
		if idx >= len(quiz.Questions) || graded[idx] != nil {
			continue
		}

		q := quiz.Questions[idx]
		correct := strings.TrimSpace(ans.Answer) == strings.TrimSpace(q.CorrectAnswer)
		earned := 0
		if correct {
			earned = q.Points
		}
		score += earned
		maxScore += q.Points

		graded[idx] = &model.QuestionResult{
			QuestionID:    q.ID,
			StudentAnswer: ans.Answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			PointsEarned:  earned,
			MaxPoints:     q.Points,
		}
		chapters.add(q.ChapterID, earned, q.Points)
		topics.add(q.TopicID, earned, q.Points)
		subtopics.add(q.SubtopicID, earned, q.Points)
	}

	// 按题目原始顺序输出
	results := make([]model.QuestionResult, 0, len(sub.Answers))
	for _, r := range graded {
		if r != nil {
			results = append(results, *r)
		}
	}

	percentage := percentOf(score, maxScore)
	point, letter := ClassifyGrade(percentage)

	return &model.QuizResult{
		QuizID:          quiz.ID,
		QuizTitle:       quiz.Title,
		QuizCreatorID:   quiz.CreatorID,
		SchoolID:        quiz.SchoolID,
		Subject:         quiz.Subject,
		Difficulty:      quiz.Difficulty,
		StudentID:       sub.StudentID,
		Score:           score,
		MaxScore:        maxScore,
		Percentage:      percentage,
		GradeLetter:     letter,
		GradePoint:      point,
		Passed:          maxScore > 0 && IsPassing(percentage),
		QuestionResults: results,
		ChapterScores:   datatypes.NewJSONType(chapters.breakdown()),
		TopicScores:     datatypes.NewJSONType(topics.breakdown()),
		SubtopicScores:  datatypes.NewJSONType(subtopics.breakdown()),
		SubmittedAt:     e.now(),
	}
}

// ResultMessage 提交后展示给学生的提示
func ResultMessage(r *model.QuizResult) string {
	status := "FAILED"
	if r.Passed {
		status = "PASSED"
	}
	return fmt.Sprintf("Quiz submitted successfully! You scored %.2f%% and %s with grade %s", r.Percentage, status, r.GradeLetter)
}
