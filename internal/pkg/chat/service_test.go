package chat

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahara-wellness/backend/internal/pkg/summary"
)

type testGenerator struct {
	res     string
	err     error
	prompts []string
}

func (g *testGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.res, g.err
}

type testUsers struct {
	memory string
	err    error
	ids    []string
}

func (u *testUsers) StartConversation(_ context.Context, userID string) (string, error) {
	u.ids = append(u.ids, userID)
	return u.memory, u.err
}

type testSummarizer struct {
	tasks []summary.Task
}

func (s *testSummarizer) Submit(t summary.Task) {
	s.tasks = append(s.tasks, t)
}

func initServiceTest(t *testing.T, gen *testGenerator, users *testUsers) (*Service, *testSummarizer) {
	t.Helper()
	sum := &testSummarizer{}
	res, err := NewService(users, gen, sum)
	require.NoError(t, err)
	return res, sum
}

func TestNewService_Fails(t *testing.T) {
	_, err := NewService(nil, &testGenerator{}, &testSummarizer{})
	assert.Error(t, err)
	_, err = NewService(&testUsers{}, nil, &testSummarizer{})
	assert.Error(t, err)
	_, err = NewService(&testUsers{}, &testGenerator{}, nil)
	assert.Error(t, err)
}

func TestReply(t *testing.T) {
	gen := &testGenerator{res: "I hear you."}
	users := &testUsers{memory: "likes walks"}
	srv, sum := initServiceTest(t, gen, users)

	res, err := srv.Reply(context.Background(), "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "I hear you.", res.Reply)
	assert.Empty(t, res.UserID)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "REMEMBER THIS from past conversations: likes walks")
	assert.Contains(t, gen.prompts[0], "User: hello")
	require.Len(t, sum.tasks, 1)
	assert.Equal(t, summary.Task{UserID: "u1", PrevMemory: "likes walks",
		UserMessage: "hello", Reply: "I hear you."}, sum.tasks[0])
}

func TestReply_NewUserGetsID(t *testing.T) {
	gen := &testGenerator{res: "Welcome."}
	users := &testUsers{}
	srv, _ := initServiceTest(t, gen, users)

	res, err := srv.Reply(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.NotEmpty(t, res.UserID)
	require.Len(t, users.ids, 1)
	assert.Equal(t, res.UserID, users.ids[0])
	assert.Contains(t, gen.prompts[0], "This is the user's first conversation.")
}

func TestReply_GenerationFailureFallsBack(t *testing.T) {
	gen := &testGenerator{err: errors.New("timeout")}
	srv, sum := initServiceTest(t, gen, &testUsers{})

	res, err := srv.Reply(context.Background(), "u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, res.Reply)
	assert.Empty(t, sum.tasks)
}

func TestReply_UserStoreFailureIgnored(t *testing.T) {
	gen := &testGenerator{res: "ok"}
	users := &testUsers{err: errors.New("unavailable")}
	srv, _ := initServiceTest(t, gen, users)

	res, err := srv.Reply(context.Background(), "u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Reply)
	assert.Contains(t, gen.prompts[0], "This is the user's first conversation.")
}
