package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
	"github.com/drt-labs-ai/conversional-commerce-agent/logging"
	"github.com/drt-labs-ai/conversional-commerce-agent/model"
)

// Decision is the routing outcome of one supervisor step: a specialist name
// or core.Finish.
type Decision string

// Finish declares the conversation complete for this turn.
const Finish = Decision(core.Finish)

// IsFinish reports whether the decision is the completion sentinel.
func (d Decision) IsFinish() bool { return string(d) == core.Finish }

// Classifier maps a free-text router response onto a member name or
// core.Finish. Pluggable so a structured/function-calling backend can
// replace substring matching without touching the scheduler.
type Classifier interface {
	Classify(text string, members []string) string
}

// SubstringClassifier scans the response for an exact member name; the first
// member (in declaration order) found anywhere in the text wins. No match
// resolves to core.Finish — a deliberate safety valve: ambiguous router
// output ends the turn instead of looping forever.
type SubstringClassifier struct{}

// Classify implements Classifier.
func (SubstringClassifier) Classify(text string, members []string) string {
	for _, m := range members {
		if strings.Contains(text, m) {
			return m
		}
	}
	return core.Finish
}

// RouterOptions configure a Router. Instructions overrides the generated
// supervisor prompt; it should still enumerate the member names and the
// finish sentinel or the classifier has nothing to match.
type RouterOptions struct {
	Window       int
	ModelTimeout time.Duration
	Classifier   Classifier
	Logger       logging.Logger
	Instructions string
}

// Router is the supervisor: it inspects recent conversation state and
// decides which specialist acts next, or declares completion.
type Router struct {
	llm          model.Model
	members      []string
	window       int
	modelTimeout time.Duration
	classifier   Classifier
	logger       logging.Logger
	instructions string
}

// NewRouter creates a supervisor over the named members. Member order
// matters: it is the tie-break order of the default classifier.
func NewRouter(llm model.Model, members []string, optFns ...func(o *RouterOptions)) *Router {
	opts := RouterOptions{
		Window:       DefaultWindow,
		ModelTimeout: DefaultModelTimeout,
		Classifier:   SubstringClassifier{},
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	r := &Router{
		llm:          llm,
		members:      append([]string(nil), members...),
		window:       opts.Window,
		modelTimeout: opts.ModelTimeout,
		classifier:   opts.Classifier,
		logger:       opts.Logger,
		instructions: opts.Instructions,
	}
	if r.instructions == "" {
		r.instructions = defaultInstructions(r.members)
	}
	return r
}

// Members returns the specialist names this router can select.
func (r *Router) Members() []string { return append([]string(nil), r.members...) }

// Decide performs one supervisor step: a windowed model call followed by
// classification of the free-text response. Decide is total — transport
// errors and unparseable output both resolve to Finish, which the caller
// logs but does not treat as a failure.
func (r *Router) Decide(ctx context.Context, state *core.State) Decision {
	ctx, cancel := context.WithTimeout(ctx, r.modelTimeout)
	defer cancel()

	req := model.Request{
		Instructions: r.instructions,
		Messages:     state.Window(r.window),
	}

	resp, err := r.llm.Generate(ctx, req)
	if err != nil {
		r.logger.Warn("router.model.error", "error", err.Error())
		return Finish
	}

	text := strings.TrimSpace(resp.Content)
	choice := r.classifier.Classify(text, r.members)
	if choice == core.Finish && !strings.Contains(text, core.Finish) {
		// Worth surfacing: the model said something that named no worker.
		r.logger.Info("router.ambiguous", "response", text)
	}

	r.logger.Debug("router.decision", "next", choice)

	return Decision(choice)
}

func defaultInstructions(members []string) string {
	names := strings.Join(members, ", ")
	var b strings.Builder
	fmt.Fprintf(&b, "You are the supervisor. You have workers: %s.\n", names)
	b.WriteString("Given the conversation, decide who should act next. Each worker performs a task and responds with its result.\n")
	fmt.Fprintf(&b, "If the answer is provided or the conversation is over, return %s.\n", core.Finish)
	fmt.Fprintf(&b, "Return ONLY one name: %s or %s.", names, core.Finish)
	return b.String()
}
