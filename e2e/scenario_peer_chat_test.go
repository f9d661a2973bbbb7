package e2e

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testPeerChatSuite struct {
	BaseHTTPSuite
}

func TestPeerChatSuite(t *testing.T) {
	suite.Run(t, &testPeerChatSuite{})
}

// TestFullPeerChatFlow registers two students, matches them into a room and
// exchanges one message, asserting delivery on the partner side only.
func (s *testPeerChatSuite) TestFullPeerChatFlow() {
	t := s.T()
	suffix := uuid.NewString()[:8]
	password := "Str0ng!Password42"

	var tokenA, tokenB string

	s.Run("Step 0: Register both students", func() {
		s.Step(t, "Registering students")
		for i, target := range []*string{&tokenA, &tokenB} {
			var out struct {
				Token string `json:"token"`
			}
			status := s.PostJSON(t, "/api/auth/register", "", map[string]string{
				"username": fmt.Sprintf("student%d%s", i, suffix),
				"name":     fmt.Sprintf("Student %d", i),
				"password": password,
			}, &out)
			s.Require().Equal(201, status)
			s.Require().NotEmpty(out.Token)
			*target = out.Token
		}
	})

	s.Run("Step 1: Match the two visitors into a room", func() {
		s.Step(t, "Peer matching")
		connA := s.Dial(t, tokenA)
		defer connA.Close()
		connB := s.Dial(t, tokenB)
		defer connB.Close()

		s.Require().NoError(connA.WriteJSON(map[string]any{"event": "request_peer"}))
		waiting := s.WaitFor(connA, "status", 5*time.Second)
		s.Require().Equal("waiting_peer", waiting["code"])

		s.Require().NoError(connB.WriteJSON(map[string]any{"event": "request_peer"}))
		started := s.WaitFor(connB, "conversation_started", 5*time.Second)
		s.Require().NotEmpty(started["peerName"])
		s.WaitFor(connA, "conversation_started", 5*time.Second)

		// --- STEP 2: MESSAGE DELIVERY ---
		s.Step(t, "Message delivery")
		messageID := uuid.NewString()
		s.Require().NoError(connA.WriteJSON(map[string]any{
			"event":     "room_message",
			"messageId": messageID,
			"content":   "hello over there",
		}))
		delivered := s.WaitFor(connB, "message", 5*time.Second)
		s.Require().Equal(messageID, delivered["id"])
		s.Require().Equal("hello over there", delivered["content"])
	})
}
