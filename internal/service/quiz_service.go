package service

import (
	"context"
	"fmt"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/repository"
	"quiz_agent_backend/internal/util"
	"quiz_agent_backend/pkg/logger"
	"quiz_agent_backend/pkg/monitoring"
	"quiz_agent_backend/pkg/tracing"
	"strings"

	"go.uber.org/zap"
)

type QuizService struct {
	Quizzes   QuizStore
	Results   ResultStore
	Users     UserDirectory
	Generator *GenerationOrchestrator
	Grader    *GradingEngine
	Cache     AnalyticsCache

	maxQuestions     int
	defaultTimeLimit int
}

func NewQuizService(quizzes QuizStore, results ResultStore, users UserDirectory, generator *GenerationOrchestrator, cache AnalyticsCache, maxQuestions, defaultTimeLimit int) *QuizService {
	if defaultTimeLimit <= 0 {
		defaultTimeLimit = 60
	}
	return &QuizService{
		Quizzes:          quizzes,
		Results:          results,
		Users:            users,
		Generator:        generator,
		Grader:           NewGradingEngine(),
		Cache:            cache,
		maxQuestions:     maxQuestions,
		defaultTimeLimit: defaultTimeLimit,
	}
}

type QuestionReq struct {
	Text          string             `json:"text" binding:"required"`
	Type          model.QuestionType `json:"type"`
	Options       []string           `json:"options"`
	CorrectAnswer string             `json:"correctAnswer" binding:"required"`
	Explanation   string             `json:"explanation"`
	Difficulty    model.Difficulty   `json:"difficulty"`
	Points        int                `json:"points"`
	ChapterID     string             `json:"chapterId"`
	TopicID       string             `json:"topicId"`
	SubtopicID    string             `json:"subtopicId"`
}

type CreateQuizReq struct {
	Title            string           `json:"title" binding:"required"`
	Description      string           `json:"description"`
	Subject          string           `json:"subject"`
	Topic            string           `json:"topic"`
	Difficulty       model.Difficulty `json:"difficulty"`
	TimeLimitMinutes int              `json:"timeLimitMinutes"`
	IsPublic         bool             `json:"isPublic"`
	Questions        []QuestionReq    `json:"questions" binding:"required"`
}

type GenerateQuizReq struct {
	GenerationRequest
	Title            string `json:"title"`
	Description      string `json:"description"`
	TimeLimitMinutes int    `json:"timeLimitMinutes"`
	IsPublic         bool   `json:"isPublic"`
}

type ListQuizzesReq struct {
	Subject    string
	Difficulty model.Difficulty
	Mine       bool
	Page       int
	Limit      int
}

type SubmitQuizReq struct {
	Answers []model.SubmittedAnswer `json:"answers"`
}

// CreateManualQuiz 人工出题，逐题按题型校验
func (s *QuizService) CreateManualQuiz(ctx context.Context, actor model.Actor, req CreateQuizReq) (*model.Quiz, error) {
	if !CanCreateQuiz(actor) {
		return nil, util.NewAuthorizationError("create quiz", fmt.Sprintf("role %q cannot create quizzes", actor.Role))
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, util.NewValidationError("title", "title is required")
	}
	if req.Difficulty == "" {
		req.Difficulty = model.Easy
	}
	if !req.Difficulty.Valid() {
		return nil, util.NewValidationError("difficulty", "unknown difficulty %q", req.Difficulty)
	}
	if len(req.Questions) == 0 {
		return nil, util.NewValidationError("questions", "at least one question is required")
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, in := range req.Questions {
		q, err := buildManualQuestion(in, req.Difficulty)
		if err != nil {
			return nil, util.NewValidationError(fmt.Sprintf("questions[%d]", i), "%s", err.Error())
		}
		questions = append(questions, q)
	}

	quiz := s.newQuiz(actor, req.Title, req.Description, req.Subject, req.Topic, req.Difficulty, req.TimeLimitMinutes, req.IsPublic)
	quiz.CreationType = model.CreationManual
	quiz.QualityScore = 1
	quiz.SetQuestions(questions)

	if err := s.Quizzes.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	logger.Log.Info("Quiz created",
		zap.String("quizId", quiz.ID),
		zap.Uint("creatorId", actor.ID),
		zap.Int("questions", quiz.TotalQuestions),
	)
	return quiz, nil
}

// GenerateQuiz AI 出题；生成状态为 failed 时不创建试卷
func (s *QuizService) GenerateQuiz(ctx context.Context, actor model.Actor, req GenerateQuizReq) (*model.Quiz, *GenerationResult, error) {
	if !CanCreateQuiz(actor) {
		return nil, nil, util.NewAuthorizationError("create quiz", fmt.Sprintf("role %q cannot create quizzes", actor.Role))
	}
	if err := req.GenerationRequest.Validate(s.maxQuestions); err != nil {
		return nil, nil, err
	}

	result := s.Generator.Generate(ctx, req.GenerationRequest)
	if result.Status == GenerationFailed {
		return nil, result, &util.GenerationError{Issues: result.Issues}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = fmt.Sprintf("%s Quiz - %s", strings.TrimSpace(req.Subject), capitalize(string(req.Difficulty)))
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%d %s questions on %s", len(result.Questions), req.Difficulty, req.Subject)
		if req.Topic != "" {
			description += " (" + req.Topic + ")"
		}
	}

	quiz := s.newQuiz(actor, title, description, req.Subject, req.Topic, req.Difficulty, req.TimeLimitMinutes, req.IsPublic)
	quiz.CreationType = model.CreationAIGenerated
	quiz.GenerationSource = string(result.Source)
	quiz.QualityScore = result.QualityScore
	quiz.SetQuestions(result.Questions)

	if err := s.Quizzes.CreateQuiz(ctx, quiz); err != nil {
		return nil, result, err
	}
	logger.Log.Info("Quiz generated",
		zap.String("quizId", quiz.ID),
		zap.String("source", quiz.GenerationSource),
		zap.Int("questions", quiz.TotalQuestions),
	)
	return quiz, result, nil
}

func (s *QuizService) newQuiz(actor model.Actor, title, description, subject, topic string, difficulty model.Difficulty, timeLimit int, isPublic bool) *model.Quiz {
	if timeLimit <= 0 {
		timeLimit = s.defaultTimeLimit
	}
	quiz := &model.Quiz{
		Title:            strings.TrimSpace(title),
		Description:      description,
		Subject:          strings.TrimSpace(subject),
		Topic:            strings.TrimSpace(topic),
		Difficulty:       difficulty,
		TimeLimitMinutes: timeLimit,
		IsPublic:         isPublic,
	}
	quiz.ID = model.GenerateUUID()
	StampCreator(actor, quiz)
	return quiz
}

func buildManualQuestion(in QuestionReq, quizDifficulty model.Difficulty) (model.Question, error) {
	q := model.Question{
		Text:          strings.TrimSpace(in.Text),
		Type:          in.Type,
		CorrectAnswer: strings.TrimSpace(in.CorrectAnswer),
		Explanation:   strings.TrimSpace(in.Explanation),
		Difficulty:    in.Difficulty,
		Points:        in.Points,
		ChapterID:     in.ChapterID,
		TopicID:       in.TopicID,
		SubtopicID:    in.SubtopicID,
	}
	if q.Type == "" {
		q.Type = model.MultipleChoice
	}
	if q.Difficulty == "" {
		q.Difficulty = quizDifficulty
	}
	if !q.Difficulty.Valid() {
		return q, fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	if q.Points == 0 {
		q.Points = q.Difficulty.DefaultPoints()
	}
	if q.Points < 0 {
		return q, fmt.Errorf("points must be positive")
	}
	if q.Text == "" {
		return q, fmt.Errorf("text is required")
	}
	if q.CorrectAnswer == "" {
		return q, fmt.Errorf("correctAnswer is required")
	}

	options := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		options = append(options, strings.TrimSpace(o))
	}

	switch q.Type {
	case model.MultipleChoice:
		c := CandidateQuestion{
			"question_text":  q.Text,
			"options":        toInterfaces(options),
			"correct_answer": q.CorrectAnswer,
			// 人工题允许不写解析
			"explanation": "-",
		}
		if err := ValidateQuestion(c); err != nil {
			return q, err
		}
	case model.TrueFalse:
		if len(options) == 0 {
			options = []string{"True", "False"}
		}
		if len(options) != 2 || options[0] != "True" || options[1] != "False" {
			return q, fmt.Errorf(`true_false options must be ["True", "False"]`)
		}
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			return q, fmt.Errorf("correctAnswer must be True or False")
		}
	case model.ShortAnswer:
		if len(options) != 0 {
			return q, fmt.Errorf("short_answer questions take no options")
		}
	default:
		return q, fmt.Errorf("unknown question type %q", q.Type)
	}

	q.Options = options
	return q, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ListQuizzes 返回可见试卷（不含题目），按创建时间倒序分页
func (s *QuizService) ListQuizzes(ctx context.Context, actor model.Actor, req ListQuizzesReq) ([]model.Quiz, int, error) {
	filter := repository.QuizFilter{
		Subject:    req.Subject,
		Difficulty: req.Difficulty,
		VisibleTo:  &actor,
	}
	if req.Mine {
		if actor.IsAnonymous() {
			return []model.Quiz{}, 0, nil
		}
		filter.CreatorID = actor.ID
	}

	quizzes, err := s.Quizzes.ListQuizzes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	visible := FilterVisibleQuizzes(actor, quizzes)
	total := len(visible)

	if req.Limit > 0 {
		page := req.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * req.Limit
		if start >= total {
			return []model.Quiz{}, total, nil
		}
		end := start + req.Limit
		if end > total {
			end = total
		}
		visible = visible[start:end]
	}
	return visible, total, nil
}

// GetQuiz 非创建者看不到答案和解析
func (s *QuizService) GetQuiz(ctx context.Context, actor model.Actor, id string) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindQuizByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewQuiz(actor, quiz) {
		return nil, util.NewAuthorizationError("view quiz", "quiz is not visible to this account")
	}
	if !CanSeeAnswerKey(actor, quiz) {
		hidden := quiz.WithoutAnswerKey()
		return &hidden, nil
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(ctx context.Context, actor model.Actor, id string) error {
	quiz, err := s.Quizzes.FindQuizByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanDeleteQuiz(actor, quiz) {
		return util.NewAuthorizationError("delete quiz", "only the creator or a super admin can delete this quiz")
	}
	// 级联会删掉所有作答记录，先记下作答学生以便清理他们的看板缓存
	var takers []uint
	if s.Cache != nil {
		results, err := s.Results.QueryResults(ctx, repository.ResultFilter{QuizID: id})
		if err != nil {
			return err
		}
		takers = distinctStudents(results)
	}
	if err := s.Quizzes.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, quiz, s.studentActors(ctx, takers)...)
	logger.Quiz(id).Info("Quiz deleted", zap.Uint("by", actor.ID), zap.Int("takers", len(takers)))
	return nil
}

// SubmitQuiz 先做可见性检查，再评分并追加成绩
func (s *QuizService) SubmitQuiz(ctx context.Context, actor model.Actor, quizID string, req SubmitQuizReq) (*model.QuizResult, error) {
	if actor.IsAnonymous() {
		return nil, util.NewAuthorizationError("submit quiz", "sign in to submit answers")
	}
	quiz, err := s.Quizzes.FindQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !CanViewQuiz(actor, quiz) {
		return nil, util.NewAuthorizationError("submit quiz", "quiz is not visible to this account")
	}
	log := logger.Quiz(quiz.ID)
	if len(req.Answers) > len(quiz.Questions) {
		log.Debug("Submission has extra answers",
			zap.Int("answers", len(req.Answers)),
			zap.Int("questions", len(quiz.Questions)),
		)
	}

	ctx, span := tracing.StartQuizSpan(ctx, "quiz.grade", quiz.ID, tracing.QuestionCountKey.Int(len(quiz.Questions)))
	defer span.End()

	result := s.Grader.Grade(quiz, model.Submission{
		QuizID:    quiz.ID,
		StudentID: actor.ID,
		Answers:   req.Answers,
	})
	span.SetAttributes(
		tracing.GradePercentKey.Float64(result.Percentage),
		tracing.GradePassedKey.Bool(result.Passed),
	)
	if err := s.Results.AppendResult(ctx, result); err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	monitoring.ObserveGrading(result.Passed)
	s.invalidate(ctx, quiz, actor)
	log.Info("Quiz graded",
		zap.Uint("studentId", actor.ID),
		zap.Float64("percentage", result.Percentage),
		zap.Bool("passed", result.Passed),
	)
	return result, nil
}

func (s *QuizService) GetResult(ctx context.Context, actor model.Actor, id string) (*model.QuizResult, error) {
	result, err := s.Results.FindResultByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewResult(actor, result) {
		return nil, util.NewAuthorizationError("view result", "result belongs to another student")
	}
	return result, nil
}

// ListResults 默认返回自己的成绩；传 quizID 且有权限时返回该卷全部成绩
func (s *QuizService) ListResults(ctx context.Context, actor model.Actor, quizID string) ([]model.QuizResult, error) {
	if actor.IsAnonymous() {
		return nil, util.NewAuthorizationError("list results", "sign in to view results")
	}
	filter := repository.ResultFilter{StudentID: actor.ID, QuizID: quizID}
	if quizID != "" {
		quiz, err := s.Quizzes.FindQuizByID(ctx, quizID)
		if err != nil {
			return nil, err
		}
		if CanDeleteQuiz(actor, quiz) {
			filter.StudentID = 0
		}
	}
	return s.Results.QueryResults(ctx, filter)
}

// invalidate 成绩变化后清理试卷、创建者以及相关学生的看板缓存
func (s *QuizService) invalidate(ctx context.Context, quiz *model.Quiz, students ...model.Actor) {
	if s.Cache == nil {
		return
	}
	keys := []string{quizAnalyticsKey(quiz.ID), teacherAnalyticsKey(quiz.CreatorID), studentListKey(quiz.CreatorID)}
	if quiz.SchoolID != 0 {
		keys = append(keys, schoolAnalyticsKey(quiz.SchoolID))
	}
	for _, student := range students {
		if student.IsAnonymous() {
			continue
		}
		keys = append(keys, userStatsKey(student.ID))
		if student.CreatedByTeacherID != 0 {
			keys = append(keys, teacherAnalyticsKey(student.CreatedByTeacherID), studentListKey(student.CreatedByTeacherID))
		}
		if student.SchoolID != 0 && student.SchoolID != quiz.SchoolID {
			keys = append(keys, schoolAnalyticsKey(student.SchoolID))
		}
	}
	if err := s.Cache.Invalidate(ctx, keys...); err != nil {
		logger.Log.Warn("Analytics cache invalidation failed", zap.Error(err))
	}
}

// studentActors 查不到归属信息的学生只清理个人统计
func (s *QuizService) studentActors(ctx context.Context, ids []uint) []model.Actor {
	if len(ids) == 0 {
		return nil
	}
	found := make(map[uint]model.Actor, len(ids))
	if s.Users != nil {
		users, err := s.Users.FindByIDs(ctx, ids)
		if err != nil {
			logger.Log.Warn("Failed to load quiz takers", zap.Error(err))
		}
		for _, u := range users {
			found[u.ID] = model.Actor{ID: u.ID, Role: u.Role, SchoolID: u.SchoolID, CreatedByTeacherID: u.CreatedByTeacherID}
		}
	}

	actors := make([]model.Actor, 0, len(ids))
	for _, id := range ids {
		actor, ok := found[id]
		if !ok {
			actor = model.Actor{ID: id, Role: model.Student}
		}
		actors = append(actors, actor)
	}
	return actors
}

func distinctStudents(results []model.QuizResult) []uint {
	seen := make(map[uint]bool, len(results))
	var ids []uint
	for _, r := range results {
		if r.StudentID != 0 && !seen[r.StudentID] {
			seen[r.StudentID] = true
			ids = append(ids, r.StudentID)
		}
	}
	return ids
}
