package services

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/question-bank-service/internal/models"
	"github.com/SAP-F-2025/question-bank-service/internal/repositories"
)

// fakeRepo is an in-memory repositories.Repository used by the service
// tests. Transactions run the callback against the same store.
type fakeRepo struct {
	users     map[uint]*models.User
	subjects  map[uint]*models.Subject
	modules   map[uint]*models.Module
	topics    map[uint]*models.Topic
	questions map[uint]*models.Question
	logs      []*models.ActivityLog
	nextID    uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:     make(map[uint]*models.User),
		subjects:  make(map[uint]*models.Subject),
		modules:   make(map[uint]*models.Module),
		topics:    make(map[uint]*models.Topic),
		questions: make(map[uint]*models.Question),
	}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) User() repositories.UserRepository               { return &fakeUserRepo{f} }
func (f *fakeRepo) Subject() repositories.SubjectRepository         { return &fakeSubjectRepo{f} }
func (f *fakeRepo) Module() repositories.ModuleRepository           { return &fakeModuleRepo{f} }
func (f *fakeRepo) Topic() repositories.TopicRepository             { return &fakeTopicRepo{f} }
func (f *fakeRepo) Question() repositories.QuestionRepository       { return &fakeQuestionRepo{f} }
func (f *fakeRepo) ActivityLog() repositories.ActivityLogRepository { return &fakeActivityRepo{f} }
func (f *fakeRepo) Analytics() repositories.AnalyticsRepository     { return &fakeAnalyticsRepo{f} }

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

// subjectIDOf resolves a question's subject through its topic and module.
func (f *fakeRepo) subjectIDOf(q *models.Question) uint {
	topic, ok := f.topics[q.TopicID]
	if !ok {
		return 0
	}
	module, ok := f.modules[topic.ModuleID]
	if !ok {
		return 0
	}
	return module.SubjectID
}

func (f *fakeRepo) withDetails(q *models.Question) *models.Question {
	out := *q
	if topic, ok := f.topics[q.TopicID]; ok {
		t := *topic
		if module, ok := f.modules[topic.ModuleID]; ok {
			m := *module
			if subject, ok := f.subjects[module.SubjectID]; ok {
				s := *subject
				m.Subject = &s
			}
			t.Module = &m
		}
		out.Topic = &t
	}
	return &out
}

// ===== USERS =====

type fakeUserRepo struct{ f *fakeRepo }

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	user.ID = r.f.id()
	r.f.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	if u, ok := r.f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	for _, u := range r.f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.User, int64, error) {
	var users []*models.User
	for _, u := range r.f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	u, ok := r.f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, tx, username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(r.f.users)), nil
}

// ===== SUBJECTS =====

type fakeSubjectRepo struct{ f *fakeRepo }

func (r *fakeSubjectRepo) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	subject.ID = r.f.id()
	r.f.subjects[subject.ID] = subject
	return nil
}

func (r *fakeSubjectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	if s, ok := r.f.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubjectRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Subject, error) {
	for _, s := range r.f.subjects {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubjectRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Subject, error) {
	var subjects []*models.Subject
	for _, s := range r.f.subjects {
		subjects = append(subjects, s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Code < subjects[j].Code })
	return subjects, nil
}

func (r *fakeSubjectRepo) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	if _, ok := r.f.subjects[subject.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.subjects[subject.ID] = subject
	return nil
}

func (r *fakeSubjectRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := r.f.subjects[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.f.subjects, id)
	return nil
}

func (r *fakeSubjectRepo) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error) {
	for _, s := range r.f.subjects {
		if s.Code == code && (excludeID == nil || s.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubjectRepo) HasModules(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	for _, m := range r.f.modules {
		if m.SubjectID == id {
			return true, nil
		}
	}
	return false, nil
}

// ===== MODULES =====

type fakeModuleRepo struct{ f *fakeRepo }

func (r *fakeModuleRepo) Create(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	module.ID = r.f.id()
	r.f.modules[module.ID] = module
	return nil
}

func (r *fakeModuleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Module, error) {
	if m, ok := r.f.modules[id]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeModuleRepo) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Module, error) {
	var modules []*models.Module
	for _, m := range r.f.modules {
		if m.SubjectID == subjectID {
			modules = append(modules, m)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].ModuleNo < modules[j].ModuleNo })
	return modules, nil
}

func (r *fakeModuleRepo) GetBySubjectAndNo(ctx context.Context, tx *gorm.DB, subjectID uint, moduleNo int) (*models.Module, error) {
	for _, m := range r.f.modules {
		if m.SubjectID == subjectID && m.ModuleNo == moduleNo {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeModuleRepo) Update(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	if _, ok := r.f.modules[module.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.modules[module.ID] = module
	return nil
}

func (r *fakeModuleRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := r.f.modules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.f.modules, id)
	return nil
}

func (r *fakeModuleRepo) HasTopics(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	for _, t := range r.f.topics {
		if t.ModuleID == id {
			return true, nil
		}
	}
	return false, nil
}

// ===== TOPICS =====

type fakeTopicRepo struct{ f *fakeRepo }

func (r *fakeTopicRepo) Create(ctx context.Context, tx *gorm.DB, topic *models.Topic) error {
	topic.ID = r.f.id()
	r.f.topics[topic.ID] = topic
	return nil
}

func (r *fakeTopicRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Topic, error) {
	if t, ok := r.f.topics[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTopicRepo) GetByIDWithHierarchy(ctx context.Context, tx *gorm.DB, id uint) (*models.Topic, error) {
	topic, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	out := *topic
	if module, ok := r.f.modules[topic.ModuleID]; ok {
		m := *module
		if subject, ok := r.f.subjects[module.SubjectID]; ok {
			s := *subject
			m.Subject = &s
		}
		out.Module = &m
	}
	return &out, nil
}

func (r *fakeTopicRepo) GetByModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]*models.Topic, error) {
	var topics []*models.Topic
	for _, t := range r.f.topics {
		if t.ModuleID == moduleID {
			topics = append(topics, t)
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

func (r *fakeTopicRepo) GetByModuleAndName(ctx context.Context, tx *gorm.DB, moduleID uint, name string) (*models.Topic, error) {
	for _, t := range r.f.topics {
		if t.ModuleID == moduleID && t.Name == name {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTopicRepo) Update(ctx context.Context, tx *gorm.DB, topic *models.Topic) error {
	if _, ok := r.f.topics[topic.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.topics[topic.ID] = topic
	return nil
}

func (r *fakeTopicRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := r.f.topics[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.f.topics, id)
	return nil
}

func (r *fakeTopicRepo) HasQuestions(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	for _, q := range r.f.questions {
		if q.TopicID == id {
			return true, nil
		}
	}
	return false, nil
}

// ===== QUESTIONS =====

type fakeQuestionRepo struct{ f *fakeRepo }

func (r *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	question.ID = r.f.id()
	r.f.questions[question.ID] = question
	return nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	if q, ok := r.f.questions[id]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQuestionRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	q, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return r.f.withDetails(q), nil
}

func (r *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if _, ok := r.f.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.questions[question.ID] = question
	return nil
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := r.f.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.f.questions, id)
	return nil
}

func (r *fakeQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	for _, q := range questions {
		q.ID = r.f.id()
		r.f.questions[q.ID] = q
	}
	return nil
}

func (r *fakeQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	var questions []*models.Question
	for _, id := range ids {
		if q, ok := r.f.questions[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func (r *fakeQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var matched []*models.Question
	for _, q := range r.f.questions {
		if filters.SubjectID != nil && r.f.subjectIDOf(q) != *filters.SubjectID {
			continue
		}
		if filters.ModuleID != nil {
			topic, ok := r.f.topics[q.TopicID]
			if !ok || topic.ModuleID != *filters.ModuleID {
				continue
			}
		}
		if filters.TopicID != nil && q.TopicID != *filters.TopicID {
			continue
		}
		if filters.Difficulty != nil && q.Difficulty != *filters.Difficulty {
			continue
		}
		if filters.CognitiveLevel != nil && q.CognitiveLevel != *filters.CognitiveLevel {
			continue
		}
		if filters.CO != nil && !strings.Contains(string(q.COTags), `"`+*filters.CO+`"`) {
			continue
		}
		if filters.PO != nil && !strings.Contains(string(q.POTags), `"`+*filters.PO+`"`) {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(q.Text), strings.ToLower(filters.Search)) {
			continue
		}
		matched = append(matched, q)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filters.Offset:]
		}
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}

	detailed := make([]*models.Question, 0, len(matched))
	for _, q := range matched {
		detailed = append(detailed, r.f.withDetails(q))
	}
	return detailed, total, nil
}

func (r *fakeQuestionRepo) GetPaperPool(ctx context.Context, tx *gorm.DB, filters repositories.PaperPoolFilters) ([]*models.Question, error) {
	excluded := make(map[uint]bool, len(filters.ExcludeIDs))
	for _, id := range filters.ExcludeIDs {
		excluded[id] = true
	}

	var pool []*models.Question
	for _, q := range r.f.questions {
		if excluded[q.ID] || q.Difficulty != filters.Difficulty {
			continue
		}
		if r.f.subjectIDOf(q) != filters.SubjectID {
			continue
		}
		if filters.CO != nil && !strings.Contains(string(q.COTags), `"`+*filters.CO+`"`) {
			continue
		}
		pool = append(pool, q)
	}

	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	if filters.Limit > 0 && len(pool) > filters.Limit {
		pool = pool[:filters.Limit]
	}
	return pool, nil
}

func (r *fakeQuestionRepo) ExistsByTextInTopic(ctx context.Context, tx *gorm.DB, topicID uint, text string, excludeID *uint) (bool, error) {
	for _, q := range r.f.questions {
		if q.TopicID == topicID && q.Text == text && (excludeID == nil || q.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

// ===== ACTIVITY LOG =====

type fakeActivityRepo struct{ f *fakeRepo }

func (r *fakeActivityRepo) Append(ctx context.Context, tx *gorm.DB, entry *models.ActivityLog) error {
	entry.ID = r.f.id()
	r.f.logs = append(r.f.logs, entry)
	return nil
}

func (r *fakeActivityRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.ActivityLog, int64, error) {
	out := make([]*models.ActivityLog, len(r.f.logs))
	copy(out, r.f.logs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

// ===== ANALYTICS =====

type fakeAnalyticsRepo struct{ f *fakeRepo }

func (r *fakeAnalyticsRepo) CountBySubject(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, q := range r.f.questions {
		if s, ok := r.f.subjects[r.f.subjectIDOf(q)]; ok {
			counts[s.Code]++
		}
	}
	return counts, nil
}

func (r *fakeAnalyticsRepo) CountByDifficulty(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, q := range r.f.questions {
		counts[string(q.Difficulty)]++
	}
	return counts, nil
}

func (r *fakeAnalyticsRepo) CountByCognitiveLevel(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, q := range r.f.questions {
		counts[string(q.CognitiveLevel)]++
	}
	return counts, nil
}

func (r *fakeAnalyticsRepo) CountByCO(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, q := range r.f.questions {
		for _, tag := range jsonToTags(q.COTags) {
			counts[tag]++
		}
	}
	return counts, nil
}

func (r *fakeAnalyticsRepo) CountByPO(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, q := range r.f.questions {
		for _, tag := range jsonToTags(q.POTags) {
			counts[tag]++
		}
	}
	return counts, nil
}

func (r *fakeAnalyticsRepo) SubjectSummaries(ctx context.Context, tx *gorm.DB) ([]*models.SubjectSummary, error) {
	var summaries []*models.SubjectSummary
	for _, s := range r.f.subjects {
		summary := &models.SubjectSummary{
			SubjectID:    s.ID,
			SubjectCode:  s.Code,
			SubjectName:  s.Name,
			ByDifficulty: make(map[string]int64),
		}
		for _, q := range r.f.questions {
			if r.f.subjectIDOf(q) == s.ID {
				summary.Total++
				summary.ByDifficulty[string(q.Difficulty)]++
			}
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].SubjectCode < summaries[j].SubjectCode })
	return summaries, nil
}
