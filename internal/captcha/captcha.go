package captcha

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/profile-chat/backend/internal/metrics"
)

// codeAlphabet omits 0/O and 1/I/L so transcribed codes survive bad fonts.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Challenge is the pending puzzle a session must answer before chatting again.
type Challenge struct {
	Code      string
	ExpiresAt time.Time
}

type sessionState struct {
	challenge   *Challenge
	solvedUntil time.Time
}

type Config struct {
	// PromptThreshold is the prompt count at and beyond which a session must
	// hold a valid solved grant.
	PromptThreshold int
	ChallengeTTL    time.Duration
	SolvedTTL       time.Duration
	CodeLength      int
	Logger          *zap.Logger
	Now             func() time.Time
}

// Manager tracks per-session challenge state. A session has at most one
// active challenge; a wrong or missing answer supersedes it with a fresh one.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*sessionState

	threshold    int
	challengeTTL time.Duration
	solvedTTL    time.Duration
	codeLength   int
	logger       *zap.Logger
	now          func() time.Time

	cleanupTicker *time.Ticker
	done          chan struct{}
}

func NewManager(cfg Config) *Manager {
	if cfg.PromptThreshold == 0 {
		cfg.PromptThreshold = 2
	}
	if cfg.ChallengeTTL == 0 {
		cfg.ChallengeTTL = 5 * time.Minute
	}
	if cfg.SolvedTTL == 0 {
		cfg.SolvedTTL = 30 * time.Minute
	}
	if cfg.CodeLength == 0 {
		cfg.CodeLength = 6
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &Manager{
		sessions:      make(map[string]*sessionState),
		threshold:     cfg.PromptThreshold,
		challengeTTL:  cfg.ChallengeTTL,
		solvedTTL:     cfg.SolvedTTL,
		codeLength:    cfg.CodeLength,
		logger:        cfg.Logger,
		now:           cfg.Now,
		cleanupTicker: time.NewTicker(10 * time.Minute),
		done:          make(chan struct{}),
	}
	go m.cleanup()
	return m
}

// Gate decides whether a prompt may proceed. promptCount is the number of
// prompts the session has already completed; token is the client's answer to
// the active challenge, empty when none was supplied. When the session is
// blocked the returned challenge must be echoed back to the client.
func (m *Manager) Gate(sessionID, token string, promptCount int) (allowed bool, challenge *Challenge) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	st := m.sessions[sessionID]

	if st != nil && now.Before(st.solvedUntil) {
		return true, nil
	}
	if promptCount < m.threshold {
		return true, nil
	}

	if st == nil {
		st = &sessionState{}
		m.sessions[sessionID] = st
	}

	active := st.challenge != nil && now.Before(st.challenge.ExpiresAt)
	if active && token != "" {
		if strings.EqualFold(strings.TrimSpace(token), st.challenge.Code) {
			st.challenge = nil
			st.solvedUntil = now.Add(m.solvedTTL)
			metrics.CaptchaChallenges.WithLabelValues("solved").Inc()
			m.logger.Info("Captcha solved", zap.String("session_id", sessionID))
			return true, nil
		}
		m.logger.Warn("Captcha answer rejected", zap.String("session_id", sessionID))
		active = false
	}

	if !active {
		st.challenge = &Challenge{
			Code:      m.newCode(),
			ExpiresAt: now.Add(m.challengeTTL),
		}
		metrics.CaptchaChallenges.WithLabelValues("issued").Inc()
	}
	return false, st.challenge
}

// Solved reports whether the session currently holds a valid solved grant.
func (m *Manager) Solved(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.sessions[sessionID]
	return st != nil && m.now().Before(st.solvedUntil)
}

func (m *Manager) newCode() string {
	var sb strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < m.codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the process is in far worse trouble
			// than a weak captcha code
			sb.WriteByte(codeAlphabet[i%len(codeAlphabet)])
			continue
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String()
}

func (m *Manager) cleanup() {
	for {
		select {
		case <-m.done:
			return
		case <-m.cleanupTicker.C:
		}

		m.mu.Lock()
		now := m.now()
		for id, st := range m.sessions {
			expired := (st.challenge == nil || now.After(st.challenge.ExpiresAt)) &&
				now.After(st.solvedUntil)
			if expired {
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()
	}
}

func (m *Manager) Stop() {
	m.cleanupTicker.Stop()
	close(m.done)
}
