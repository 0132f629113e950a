package helpdesk_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/islandrv/helpdesk/backend/internal/model/catalog"
	"github.com/islandrv/helpdesk/backend/internal/model/chat"
	"github.com/islandrv/helpdesk/backend/internal/model/policy"
	"github.com/islandrv/helpdesk/backend/internal/service/ai"
	"github.com/islandrv/helpdesk/backend/internal/service/ai/aitest"
	catalogservice "github.com/islandrv/helpdesk/backend/internal/service/catalog"
	chatservice "github.com/islandrv/helpdesk/backend/internal/service/chat"
	"github.com/islandrv/helpdesk/backend/internal/service/helpdesk"
)

func newService(t *testing.T, fake *aitest.FakeChatModel) (*helpdesk.Service, *chatservice.Service) {
	t.Helper()
	aiSvc, err := ai.NewService(fake, policy.Default())
	require.NoError(t, err)

	store := catalog.NewMemoryStore([]catalog.Category{{
		ID:            "class-c",
		Name:          "Class C Motorhome",
		IncludedItems: []string{"Kitchen kit"},
	}})
	chats := chatservice.NewService(nil)
	return helpdesk.NewService(policy.Default(), aiSvc, catalogservice.NewAnswerer(store), chats), chats
}

func TestAnswerBookingScenario(t *testing.T) {
	fake := &aitest.FakeChatModel{Reply: `Sure, check here: <a href="https://islandrv.ca/booknow/">link</a>`}
	svc, _ := newService(t, fake)

	resp, err := svc.Answer(context.Background(), helpdesk.Request{Message: "I want to book an RV"})
	require.NoError(t, err)

	assert.Equal(t, "Sure, check here: [link](https://islandrv.ca/booknow/)", resp.Reply)
	assert.Equal(t, helpdesk.SourceModel, resp.Source)
}

func TestAnswerEscalationScenario(t *testing.T) {
	fake := &aitest.FakeChatModel{Reply: "Try resetting it. If that fails, contact support."}
	svc, _ := newService(t, fake)

	resp, err := svc.Answer(context.Background(), helpdesk.Request{Message: "my fridge won't cool"})
	require.NoError(t, err)

	assert.Equal(t, "Try resetting it. If that fails, contact support.\n\n[Contact Support](https://islandrv.ca/contact/)", resp.Reply)
}

func TestAnswerRequiresMessage(t *testing.T) {
	fake := &aitest.FakeChatModel{Reply: "unused"}
	svc, _ := newService(t, fake)

	_, err := svc.Answer(context.Background(), helpdesk.Request{Message: "   "})
	assert.ErrorIs(t, err, helpdesk.ErrMessageRequired)
	assert.Empty(t, fake.Calls())
}

func TestAnswerCatalogSkipsModel(t *testing.T) {
	fake := &aitest.FakeChatModel{Reply: "unused"}
	svc, _ := newService(t, fake)

	resp, err := svc.Answer(context.Background(), helpdesk.Request{Message: "See included items"})
	require.NoError(t, err)

	assert.Equal(t, helpdesk.SourceCatalog, resp.Source)
	assert.Contains(t, resp.Reply, "- Kitchen kit")
	assert.Empty(t, fake.Calls())
}

func TestAnswerHazardBypassesCatalog(t *testing.T) {
	fake := &aitest.FakeChatModel{Reply: "Leave the RV now and call 911."}
	svc, _ := newService(t, fake)

	resp, err := svc.Answer(context.Background(), helpdesk.Request{
		Message: "There is a gas leak and smoke! Is a fire extinguisher included?",
	})
	require.NoError(t, err)

	assert.Equal(t, helpdesk.SourceModel, resp.Source)
	assert.NotContains(t, resp.Reply, "Kitchen kit")
	assert.Len(t, fake.Calls(), 1)
}

func TestAnswerUpstreamFailureIsTerminal(t *testing.T) {
	fake := &aitest.FakeChatModel{Err: &ai.UpstreamError{Message: "rate limited"}}
	svc, _ := newService(t, fake)

	_, err := svc.Answer(context.Background(), helpdesk.Request{Message: "AC Help"})

	var upstream *ai.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Len(t, fake.Calls(), 1, "no retries")
}

func TestAnswerWithoutCompleter(t *testing.T) {
	svc := helpdesk.NewService(policy.Default(), nil, catalogservice.NewAnswerer(nil), nil)

	_, err := svc.Answer(context.Background(), helpdesk.Request{Message: "Stove Help"})
	assert.ErrorIs(t, err, helpdesk.ErrAIUnavailable)
}

func TestAnswerRecordsTranscriptAndUsesHistory(t *testing.T) {
	fake := &aitest.FakeChatModel{Reply: "Is it a Dometic or Norcold? Outdoorsy units differ."}
	svc, chats := newService(t, fake)
	ctx := context.Background()

	session, err := chats.CreateSession(ctx, "web")
	require.NoError(t, err)

	_, err = svc.Answer(ctx, helpdesk.Request{Message: "Fridge Help", SessionID: session.ID})
	require.NoError(t, err)
	_, err = svc.Answer(ctx, helpdesk.Request{Message: "Dometic", SessionID: session.ID})
	require.NoError(t, err)

	transcript, err := chats.LoadTranscript(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 4)
	assert.Equal(t, chat.RoleUser, transcript[0].Role)
	assert.Equal(t, "Is it a Dometic or Norcold? Island RV Rentals units differ.", transcript[1].Text)

	second := fake.Calls()[1]
	require.Len(t, second, 4, "system, two history turns, user")
	assert.Equal(t, "Dometic", second[3].Content)
}

func TestAnswerUnknownSession(t *testing.T) {
	svc, _ := newService(t, &aitest.FakeChatModel{Reply: "ok"})

	_, err := svc.Answer(context.Background(), helpdesk.Request{Message: "hi", SessionID: "missing"})
	assert.ErrorIs(t, err, chatservice.ErrSessionNotFound)
}

func TestAnswerUnitTypeReachesPrompt(t *testing.T) {
	fake := &aitest.FakeChatModel{Reply: "ok"}
	svc, _ := newService(t, fake)

	_, err := svc.Answer(context.Background(), helpdesk.Request{Message: "How do I level it?", UnitType: "class-c"})
	require.NoError(t, err)

	system := fake.Calls()[0][0].Content
	assert.True(t, strings.Contains(system, "The customer is renting a Class C Motorhome."))
}
