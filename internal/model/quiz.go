package model

import (
	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// DefaultPoints easy=1, medium=2, hard=3
func (d Difficulty) DefaultPoints() int {
	switch d {
	case Medium:
		return 2
	case Hard:
		return 3
	default:
		return 1
	}
}

type CreationType string

const (
	CreationManual      CreationType = "manual"
	CreationAIGenerated CreationType = "ai_generated"
)

// Question 试卷中的一道题，创建后不再修改
type Question struct {
	QuizID        string                      `gorm:"primaryKey;type:varchar(36)" json:"-"`
	ID            string                      `gorm:"primaryKey;size:32" json:"id"`
	Position      int                         `gorm:"not null" json:"-"`
	Text          string                      `gorm:"type:text;not null" json:"text"`
	Type          QuestionType                `gorm:"size:20;not null" json:"type"`
	Options       datatypes.JSONSlice[string] `gorm:"type:json" json:"options"`
	CorrectAnswer string                      `gorm:"size:500" json:"correctAnswer,omitempty"`
	Explanation   string                      `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty    Difficulty                  `gorm:"size:10" json:"difficulty"`
	Points        int                         `gorm:"not null;default:1" json:"points"`
	ChapterID     string                      `gorm:"size:64" json:"chapterId,omitempty"`
	TopicID       string                      `gorm:"size:64" json:"topicId,omitempty"`
	SubtopicID    string                      `gorm:"size:64" json:"subtopicId,omitempty"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	Title            string     `gorm:"size:200;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Subject          string     `gorm:"size:100;index" json:"subject"`
	Topic            string     `gorm:"size:200" json:"topic,omitempty"`
	Difficulty       Difficulty `gorm:"size:10;index" json:"difficulty"`
	TimeLimitMinutes int        `gorm:"default:60" json:"timeLimitMinutes"`
	IsPublic         bool       `gorm:"index" json:"isPublic"`
	CreatorID        uint       `gorm:"index" json:"creatorId"`
	CreatorRole      UserRole   `gorm:"size:20" json:"creatorRole"`
	// 旧数据只写了 user_id，删除权限需要同时比对
	LegacyUserID       uint         `gorm:"column:user_id;index" json:"-"`
	CreatedByTeacherID uint         `gorm:"index" json:"createdByTeacherId,omitempty"`
	SchoolID           uint         `gorm:"index" json:"schoolId,omitempty"`
	CreationType       CreationType `gorm:"size:20" json:"creationType"`
	GenerationSource   string       `gorm:"size:20" json:"generationSource,omitempty"`
	QualityScore       float64      `json:"qualityScore"`
	TotalQuestions     int          `json:"totalQuestions"`
	TotalPoints        int          `json:"totalPoints"`
	Questions          []Question   `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// SetQuestions 重新编号并同步题目数与总分
func (q *Quiz) SetQuestions(questions []Question) {
	q.Questions = questions
	q.TotalPoints = 0
	for i := range q.Questions {
		q.Questions[i].Position = i
		q.Questions[i].ID = QuestionID(i)
		q.Questions[i].QuizID = q.ID
		q.TotalPoints += q.Questions[i].Points
	}
	q.TotalQuestions = len(q.Questions)
}

// WithoutAnswerKey 返回隐藏答案和解析的副本
func (q Quiz) WithoutAnswerKey() Quiz {
	questions := make([]Question, len(q.Questions))
	for i, qs := range q.Questions {
		qs.CorrectAnswer = ""
		qs.Explanation = ""
		questions[i] = qs
	}
	q.Questions = questions
	return q
}
