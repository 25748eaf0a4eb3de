package recommend

import (
	"fmt"
	"sync"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
)

// DefaultServingEpsilon is the exploration rate used when answering live
// requests. Exploration during serving is kept at the training floor.
const DefaultServingEpsilon = 0.01

// Policy is the one decision agent shared by every learner and request in a
// deployment. It serializes access to the underlying agent.
type Policy struct {
	mu          sync.Mutex
	agent       *adaptive.Agent
	weightsPath string
}

var _ quiz.Policy = (*Policy)(nil)

// NewPolicy wraps an existing agent. weightsPath is where Save writes.
func NewPolicy(agent *adaptive.Agent, weightsPath string) *Policy {
	return &Policy{agent: agent, weightsPath: weightsPath}
}

// LoadPolicy builds the shared agent from cfg, loading weightsPath
// best-effort, and sets its exploration rate to servingEpsilon.
func LoadPolicy(cfg adaptive.Config, weightsPath string, servingEpsilon float64, opts ...adaptive.Option) (*Policy, error) {
	cfg.WeightsPath = weightsPath
	agent, err := adaptive.NewAgent(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	agent.SetEpsilon(servingEpsilon)
	return NewPolicy(agent, weightsPath), nil
}

// Act implements quiz.Policy.
func (p *Policy) Act(state []float64) (adaptive.Action, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agent.Act(state)
}

// Values returns the agent's score for every action.
func (p *Policy) Values(state []float64) ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agent.Values(state)
}

// Epsilon returns the current exploration rate.
func (p *Policy) Epsilon() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agent.Epsilon()
}

// Config returns the agent's configuration.
func (p *Policy) Config() adaptive.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agent.Config()
}

// Train runs fn with exclusive access to the agent.
func (p *Policy) Train(fn func(*adaptive.Agent) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.agent)
}

// Save writes the agent's parameters to the policy's weights path.
func (p *Policy) Save() error {
	if p.weightsPath == "" {
		return fmt.Errorf("save policy: no weights path configured")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agent.Save(p.weightsPath)
}

// WeightsPath returns where the policy is persisted.
func (p *Policy) WeightsPath() string {
	return p.weightsPath
}
