package model

import (
	"time"

	"gorm.io/datatypes"
)

// SubmittedAnswer 学生的单个作答；QuestionID 为空时按位置匹配，ID 不存在的作答不计分
type SubmittedAnswer struct {
	QuestionID string `json:"questionId,omitempty"`
	Answer     string `json:"answer"`
}

type Submission struct {
	QuizID    string
	StudentID uint
	Answers   []SubmittedAnswer
}

type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	StudentAnswer string `json:"studentAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	PointsEarned  int    `json:"pointsEarned"`
	MaxPoints     int    `json:"maxPoints"`
}

type ScoreBucket struct {
	Score      int     `json:"score"`
	MaxScore   int     `json:"maxScore"`
	Percentage float64 `json:"percentage"`
}

type ScoreBreakdown map[string]ScoreBucket

// QuizResult 一次提交的评分结果，写入后不再修改
// swagger:model QuizResult
type QuizResult struct {
	UUIDBase
	QuizID          string                              `gorm:"type:varchar(36);index" json:"quizId"`
	QuizTitle       string                              `gorm:"size:200" json:"quizTitle"`
	QuizCreatorID   uint                                `gorm:"index" json:"quizCreatorId"`
	SchoolID        uint                                `gorm:"index" json:"schoolId,omitempty"`
	Subject         string                              `gorm:"size:100" json:"subject"`
	Difficulty      Difficulty                          `gorm:"size:10" json:"difficulty"`
	StudentID       uint                                `gorm:"index" json:"studentId"`
	Score           int                                 `json:"score"`
	MaxScore        int                                 `json:"maxScore"`
	Percentage      float64                             `json:"percentage"`
	GradeLetter     string                              `gorm:"size:3" json:"gradeLetter"`
	GradePoint      float64                             `json:"gradePoint"`
	Passed          bool                                `json:"passed"`
	QuestionResults datatypes.JSONSlice[QuestionResult] `gorm:"type:json" json:"questionResults"`
	ChapterScores   datatypes.JSONType[ScoreBreakdown]  `gorm:"type:json" json:"chapterScores"`
	TopicScores     datatypes.JSONType[ScoreBreakdown]  `gorm:"type:json" json:"topicScores"`
	SubtopicScores  datatypes.JSONType[ScoreBreakdown]  `gorm:"type:json" json:"subtopicScores"`
	SubmittedAt     time.Time                           `gorm:"index" json:"submittedAt"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
