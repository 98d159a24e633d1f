package service

import (
	"context"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/repository"
	"quiz_agent_backend/internal/util"
	"sort"
	"time"
)

const (
	recentActivityLimit = 10
	recentResultsLimit  = 5
)

type AnalyticsService struct {
	Quizzes QuizStore
	Results ResultStore
	Users   UserDirectory
	Cache   AnalyticsCache
}

func NewAnalyticsService(quizzes QuizStore, results ResultStore, users UserDirectory, cache AnalyticsCache) *AnalyticsService {
	return &AnalyticsService{Quizzes: quizzes, Results: results, Users: users, Cache: cache}
}

type QuizInfo struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Subject        string           `json:"subject"`
	Difficulty     model.Difficulty `json:"difficulty"`
	TotalQuestions int              `json:"totalQuestions"`
	TotalPoints    int              `json:"totalPoints"`
	CreatedAt      time.Time        `json:"createdAt"`
}

type QuestionStat struct {
	QuestionID  string  `json:"questionId"`
	Text        string  `json:"text"`
	Attempts    int     `json:"attempts"`
	Correct     int     `json:"correct"`
	SuccessRate float64 `json:"successRate"`
}

type QuizAnalytics struct {
	Quiz             QuizInfo           `json:"quiz"`
	Performance      AnalyticsSummary   `json:"performance"`
	QuestionAnalysis []QuestionStat     `json:"questionAnalysis"`
	RecentAttempts   []model.QuizResult `json:"recentAttempts"`
}

type PopularQuiz struct {
	QuizID   string `json:"quizId"`
	Title    string `json:"title"`
	Attempts int    `json:"attempts"`
}

type TeacherOverview struct {
	TeacherID        uint               `json:"teacherId"`
	TotalStudents    int                `json:"totalStudents"`
	ActiveStudents   int                `json:"activeStudents"`
	QuizzesCreated   int                `json:"quizzesCreated"`
	QuizzesPublished int                `json:"quizzesPublished"`
	Performance      AnalyticsSummary   `json:"performance"`
	MostPopularQuiz  *PopularQuiz       `json:"mostPopularQuiz,omitempty"`
	RecentActivity   []model.QuizResult `json:"recentActivity"`
}

type StudentPerformance struct {
	StudentID uint   `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	PerformanceStats
	BestScore       float64            `json:"bestScore"`
	LastQuizTitle   string             `json:"lastQuizTitle,omitempty"`
	LastSubmittedAt *time.Time         `json:"lastSubmittedAt,omitempty"`
	RecentResults   []model.QuizResult `json:"recentResults"`
}

type StudentAnalytics struct {
	Students []StudentPerformance `json:"students"`
	Total    int                  `json:"total"`
}

type UserQuizStats struct {
	UserID        uint               `json:"userId"`
	Name          string             `json:"name"`
	Role          model.UserRole     `json:"role"`
	Overall       AnalyticsSummary   `json:"overall"`
	FailedCount   int                `json:"failedCount"`
	RecentAverage float64            `json:"recentAverage"`
	RecentResults []model.QuizResult `json:"recentResults"`
}

type SchoolAnalytics struct {
	SchoolID       uint               `json:"schoolId"`
	TotalUsers     int                `json:"totalUsers"`
	Teachers       int                `json:"teachers"`
	Students       int                `json:"students"`
	TotalQuizzes   int                `json:"totalQuizzes"`
	Performance    AnalyticsSummary   `json:"performance"`
	RecentActivity []model.QuizResult `json:"recentActivity"`
}

// QuizAnalytics 仅试卷创建者和 super_admin 可查看
func (s *AnalyticsService) QuizAnalytics(ctx context.Context, actor model.Actor, quizID string) (*QuizAnalytics, error) {
	quiz, err := s.Quizzes.FindQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !CanSeeAnswerKey(actor, quiz) {
		return nil, util.NewAuthorizationError("view quiz analytics", "only the quiz creator can view its analytics")
	}

	return cached(ctx, s.Cache, quizAnalyticsKey(quizID), func() (*QuizAnalytics, error) {
		results, err := s.Results.QueryResults(ctx, repository.ResultFilter{QuizID: quizID})
		if err != nil {
			return nil, err
		}
		return &QuizAnalytics{
			Quiz: QuizInfo{
				ID:             quiz.ID,
				Title:          quiz.Title,
				Description:    quiz.Description,
				Subject:        quiz.Subject,
				Difficulty:     quiz.Difficulty,
				TotalQuestions: quiz.TotalQuestions,
				TotalPoints:    quiz.TotalPoints,
				CreatedAt:      quiz.CreatedAt,
			},
			Performance:      AggregateResults(results),
			QuestionAnalysis: analyzeQuestions(quiz, results),
			RecentAttempts:   latest(results, recentActivityLimit),
		}, nil
	})
}

func analyzeQuestions(quiz *model.Quiz, results []model.QuizResult) []QuestionStat {
	stats := make([]QuestionStat, len(quiz.Questions))
	index := make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		stats[i] = QuestionStat{QuestionID: q.ID, Text: q.Text}
		index[q.ID] = i
	}
	for _, r := range results {
		for _, qr := range r.QuestionResults {
			i, ok := index[qr.QuestionID]
			if !ok {
				continue
			}
			stats[i].Attempts++
			if qr.IsCorrect {
				stats[i].Correct++
			}
		}
	}
	for i := range stats {
		if stats[i].Attempts > 0 {
			stats[i].SuccessRate = roundTo2(100 * float64(stats[i].Correct) / float64(stats[i].Attempts))
		}
	}
	return stats
}

// TeacherOverview 汇总教师所带学生的成绩和教师自己的试卷
func (s *AnalyticsService) TeacherOverview(ctx context.Context, actor model.Actor) (*TeacherOverview, error) {
	if err := requireStaff(actor, "view teacher analytics"); err != nil {
		return nil, err
	}

	return cached(ctx, s.Cache, teacherAnalyticsKey(actor.ID), func() (*TeacherOverview, error) {
		students, err := s.Users.ListUsers(ctx, repository.UserFilter{Role: model.Student, CreatedByTeacherID: actor.ID})
		if err != nil {
			return nil, err
		}
		quizzes, err := s.Quizzes.ListQuizzes(ctx, repository.QuizFilter{CreatorID: actor.ID})
		if err != nil {
			return nil, err
		}
		studentResults, err := s.Results.QueryResults(ctx, repository.ResultFilter{StudentIDs: userIDs(students)})
		if err != nil {
			return nil, err
		}
		quizResults, err := s.Results.QueryResults(ctx, repository.ResultFilter{QuizCreatorID: actor.ID})
		if err != nil {
			return nil, err
		}

		overview := &TeacherOverview{
			TeacherID:      actor.ID,
			TotalStudents:  len(students),
			QuizzesCreated: len(quizzes),
			Performance:    AggregateResults(studentResults),
			RecentActivity: latest(studentResults, recentActivityLimit),
		}
		for _, st := range students {
			if !st.Disabled {
				overview.ActiveStudents++
			}
		}
		for _, q := range quizzes {
			if q.IsPublic {
				overview.QuizzesPublished++
			}
		}
		overview.MostPopularQuiz = mostPopular(quizzes, quizResults)
		return overview, nil
	})
}

func mostPopular(quizzes []model.Quiz, results []model.QuizResult) *PopularQuiz {
	attempts := make(map[string]int, len(quizzes))
	for _, r := range results {
		attempts[r.QuizID]++
	}
	var best *PopularQuiz
	for _, q := range quizzes {
		n := attempts[q.ID]
		if n == 0 {
			continue
		}
		if best == nil || n > best.Attempts {
			best = &PopularQuiz{QuizID: q.ID, Title: q.Title, Attempts: n}
		}
	}
	return best
}

// StudentAnalytics 教师名下学生按平均分降序
func (s *AnalyticsService) StudentAnalytics(ctx context.Context, actor model.Actor) (*StudentAnalytics, error) {
	if err := requireStaff(actor, "view student analytics"); err != nil {
		return nil, err
	}

	return cached(ctx, s.Cache, studentListKey(actor.ID), func() (*StudentAnalytics, error) {
		students, err := s.Users.ListUsers(ctx, repository.UserFilter{Role: model.Student, CreatedByTeacherID: actor.ID})
		if err != nil {
			return nil, err
		}
		results, err := s.Results.QueryResults(ctx, repository.ResultFilter{StudentIDs: userIDs(students)})
		if err != nil {
			return nil, err
		}

		byStudent := make(map[uint][]model.QuizResult, len(students))
		for _, r := range results {
			byStudent[r.StudentID] = append(byStudent[r.StudentID], r)
		}

		out := make([]StudentPerformance, 0, len(students))
		for _, st := range students {
			own := byStudent[st.ID]
			summary := AggregateResults(own)
			perf := StudentPerformance{
				StudentID:        st.ID,
				Name:             st.Name,
				Email:            st.Email,
				PerformanceStats: summary.PerformanceStats,
				BestScore:        summary.BestScore,
				RecentResults:    latest(own, recentResultsLimit),
			}
			if len(perf.RecentResults) > 0 {
				last := perf.RecentResults[0]
				perf.LastQuizTitle = last.QuizTitle
				perf.LastSubmittedAt = &last.SubmittedAt
			}
			out = append(out, perf)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].AverageScore > out[j].AverageScore
		})
		return &StudentAnalytics{Students: out, Total: len(out)}, nil
	})
}

// UserStats 本人、管理员或其任课教师可查看
func (s *AnalyticsService) UserStats(ctx context.Context, actor model.Actor, userID uint) (*UserQuizStats, error) {
	if actor.IsAnonymous() {
		return nil, util.NewAuthorizationError("view quiz stats", "sign in to view statistics")
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	allowed := actor.ID == userID ||
		actor.Role == model.SuperAdmin ||
		actor.Role == model.Admin ||
		(actor.Role == model.Teacher && user.CreatedByTeacherID == actor.ID)
	if !allowed {
		return nil, util.NewAuthorizationError("view quiz stats", "statistics belong to another user")
	}

	return cached(ctx, s.Cache, userStatsKey(userID), func() (*UserQuizStats, error) {
		results, err := s.Results.QueryResults(ctx, repository.ResultFilter{StudentID: userID})
		if err != nil {
			return nil, err
		}
		overall := AggregateResults(results)
		recent := latest(results, recentResultsLimit)
		return &UserQuizStats{
			UserID:        user.ID,
			Name:          user.Name,
			Role:          user.Role,
			Overall:       overall,
			FailedCount:   overall.TotalAttempts - overall.PassedAttempts,
			RecentAverage: AggregateResults(recent).AverageScore,
			RecentResults: recent,
		}, nil
	})
}

// SchoolAnalytics super_admin 可看任意学校，其余教职工只能看本校
func (s *AnalyticsService) SchoolAnalytics(ctx context.Context, actor model.Actor, schoolID uint) (*SchoolAnalytics, error) {
	if err := requireStaff(actor, "view school analytics"); err != nil {
		return nil, err
	}
	if actor.Role != model.SuperAdmin && actor.SchoolID != schoolID {
		return nil, util.NewAuthorizationError("view school analytics", "school belongs to another organisation")
	}

	return cached(ctx, s.Cache, schoolAnalyticsKey(schoolID), func() (*SchoolAnalytics, error) {
		users, err := s.Users.ListUsers(ctx, repository.UserFilter{SchoolID: schoolID})
		if err != nil {
			return nil, err
		}
		quizzes, err := s.Quizzes.ListQuizzes(ctx, repository.QuizFilter{SchoolID: schoolID})
		if err != nil {
			return nil, err
		}

		out := &SchoolAnalytics{SchoolID: schoolID, TotalUsers: len(users), TotalQuizzes: len(quizzes)}
		var studentIDs []uint
		for _, u := range users {
			switch u.Role {
			case model.Teacher:
				out.Teachers++
			case model.Student:
				out.Students++
				studentIDs = append(studentIDs, u.ID)
			}
		}
		if studentIDs == nil {
			studentIDs = []uint{}
		}

		results, err := s.Results.QueryResults(ctx, repository.ResultFilter{StudentIDs: studentIDs})
		if err != nil {
			return nil, err
		}
		out.Performance = AggregateResults(results)
		out.RecentActivity = latest(results, recentActivityLimit)
		return out, nil
	})
}

func requireStaff(actor model.Actor, action string) error {
	if actor.IsAnonymous() {
		return util.NewAuthorizationError(action, "sign in required")
	}
	switch actor.Role {
	case model.Teacher, model.Admin, model.SuperAdmin:
		return nil
	}
	return util.NewAuthorizationError(action, "teachers and administrators only")
}

func userIDs(users []model.User) []uint {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// latest 按提交时间倒序取前 n 条，不修改入参
func latest(results []model.QuizResult, n int) []model.QuizResult {
	sorted := make([]model.QuizResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.After(sorted[j].SubmittedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
