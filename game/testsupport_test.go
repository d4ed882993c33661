package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"quizrush/models"
)

// fakeClock lets tests move time forward deterministically instead of
// sleeping through question windows.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeStore records persistence calls without a database.
type fakeStore struct {
	mu sync.Mutex

	roomsCreated   int
	playersAdded   int
	started        int
	advances       []int
	answers        []models.Answer
	results        []models.GameResult
	cancellations  int
	events         []models.RoomEvent
	failEverything bool

	// rewriteStartedIDs mimics the database assigning its own keys to the
	// question rows it receives on MarkStarted.
	rewriteStartedIDs bool
}

func (s *fakeStore) err() error {
	if s.failEverything {
		return fmt.Errorf("store unavailable")
	}
	return nil
}

func (s *fakeStore) CreateRoom(room *models.GameRoom, creator *models.RoomPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomsCreated++
	return s.err()
}

func (s *fakeStore) AddPlayer(player *models.RoomPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playersAdded++
	return s.err()
}

func (s *fakeStore) UpdatePlayerStatus(roomID, playerID, status string, at time.Time) error {
	return s.err()
}

func (s *fakeStore) MarkStarted(roomID string, at time.Time, questions []models.RoomQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	if s.rewriteStartedIDs {
		for i := range questions {
			questions[i].ID = uint(1000 + i)
		}
	}
	return s.err()
}

func (s *fakeStore) AdvanceQuestion(roomID string, questionNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advances = append(s.advances, questionNumber)
	return s.err()
}

func (s *fakeStore) RecordAnswer(answer *models.Answer, player *models.RoomPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, *answer)
	return s.err()
}

func (s *fakeStore) SaveResult(result *models.GameResult, players []models.RoomPlayer, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, *result)
	return s.err()
}

func (s *fakeStore) MarkCancelled(roomID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancellations++
	return s.err()
}

func (s *fakeStore) LogEvent(event *models.RoomEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return s.err()
}

// fakeBank serves a fixed question list regardless of filters.
type fakeBank struct {
	questions []models.QuizQuestion
	err       error
}

func (b *fakeBank) Questions(gameType, gradeLevel, difficulty string, count int) ([]models.QuizQuestion, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make([]models.QuizQuestion, len(b.questions))
	copy(out, b.questions)
	return out, nil
}

func mathQuestions(n int) []models.QuizQuestion {
	qs := make([]models.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, models.QuizQuestion{
			ID:            uint(i + 1),
			GameType:      "math_race",
			GradeLevel:    "3",
			Difficulty:    "easy",
			Text:          fmt.Sprintf("%d + %d = ?", i, i),
			QuestionType:  models.QuestionMultipleChoice,
			Options:       fmt.Sprintf(`["%d","%d","%d"]`, 2*i, 2*i+1, 2*i+2),
			CorrectAnswer: fmt.Sprintf("%d", 2*i),
			Points:        100,
			TimeLimit:     30,
		})
	}
	return qs
}

type testEnv struct {
	orch  *Orchestrator
	store *fakeStore
	bank  *fakeBank
	clock *fakeClock
}

func newTestEnv(t *testing.T, questionCount int) *testEnv {
	t.Helper()
	store := &fakeStore{}
	bank := &fakeBank{questions: mathQuestions(questionCount)}
	clock := newFakeClock()
	orch := NewOrchestrator(store, bank)
	orch.now = clock.Now
	return &testEnv{orch: orch, store: store, bank: bank, clock: clock}
}

func testSettings(questions int) Settings {
	return Settings{
		TotalQuestions:   questions,
		TimePerQuestion:  30,
		ShuffleQuestions: false,
		ShowLeaderboard:  true,
	}
}

// startedGame creates a room, joins the extra players, readies everyone and
// starts. Returns the room ID.
func startedGame(t *testing.T, env *testEnv, questions int, players ...string) string {
	t.Helper()
	if len(players) < 2 {
		t.Fatalf("startedGame needs at least a creator and one player")
	}

	snap, err := env.orch.CreateRoom(players[0], "Player "+players[0], "math_race", "3", "easy", 10, testSettings(questions))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	for _, p := range players[1:] {
		if _, err := env.orch.JoinByCode(snap.RoomCode, p, "Player "+p); err != nil {
			t.Fatalf("JoinByCode(%s): %v", p, err)
		}
	}
	for _, p := range players {
		if err := env.orch.SetReady(snap.RoomID, p, true); err != nil {
			t.Fatalf("SetReady(%s): %v", p, err)
		}
	}
	if _, err := env.orch.StartGame(snap.RoomID, players[0]); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	return snap.RoomID
}

// openQuestionID returns the ID of the question whose window is open.
func openQuestionID(t *testing.T, env *testEnv, roomID string) uint {
	t.Helper()
	q, err := env.orch.CurrentQuestion(roomID)
	if err != nil {
		t.Fatalf("CurrentQuestion: %v", err)
	}
	if q == nil {
		t.Fatalf("no question window open")
	}
	return q.ID
}
