package nlu

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
)

type Intent string

const (
	IntentTime     Intent = "time"
	IntentDate     Intent = "date"
	IntentLocation Intent = "location"
	IntentWeather  Intent = "weather"
	IntentTimezone Intent = "timezone"
	IntentJoke     Intent = "joke"
	IntentPlay     Intent = "play"
	IntentStop     Intent = "stop"
	IntentExit     Intent = "exit"
	IntentFallback Intent = "fallback"
)

const (
	Thinking = "Let me think about that..."
	Goodbye  = "Goodbye!"
)

// Environment answers the time/date/location/weather/timezone intents.
type Environment interface {
	Time() string
	Date() string
	Location() string
	Weather() string
	Timezone(ctx context.Context) string
}

type Jokes interface {
	Next() string
}

type Music interface {
	Play(ctx context.Context) string
	Stop() string
}

type QA interface {
	Answer(ctx context.Context, question string) string
}

type Speaker interface {
	Speak(text string)
}

// Reply is what a handler wants said, and whether the loop goes on.
type Reply struct {
	Text string
	Done bool
}

type Handler func(ctx context.Context, utterance string) Reply

// Rule binds an intent to the keywords that select it. The utterance
// matches when it contains any keyword.
type Rule struct {
	Intent   Intent
	Keywords []string
	Handle   Handler
}

func (r Rule) Matches(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type Deps struct {
	Env     Environment
	Jokes   Jokes
	Music   Music
	QA      QA
	Speaker Speaker
}

// Dispatcher routes an utterance to the first matching rule, falling
// back to question answering.
type Dispatcher struct {
	rules   []Rule
	qa      QA
	speaker Speaker
}

func NewDispatcher(d Deps) *Dispatcher {
	return &Dispatcher{
		rules:   DefaultRules(d),
		qa:      d.QA,
		speaker: d.Speaker,
	}
}

// DefaultRules is the fixed intent table in priority order. "timezone"
// contains "time", so the time rule shadows the timezone rule.
func DefaultRules(d Deps) []Rule {
	say := func(f func() string) Handler {
		return func(context.Context, string) Reply { return Reply{Text: f()} }
	}

	return []Rule{
		{IntentTime, []string{"time"}, say(func() string {
			return fmt.Sprintf("The current time is %s.", d.Env.Time())
		})},
		{IntentDate, []string{"date"}, say(func() string {
			return fmt.Sprintf("Today's date is %s.", d.Env.Date())
		})},
		{IntentLocation, []string{"location"}, say(func() string {
			return fmt.Sprintf("You are currently in %s.", d.Env.Location())
		})},
		{IntentWeather, []string{"weather"}, say(d.Env.Weather)},
		{IntentTimezone, []string{"timezone"}, func(ctx context.Context, _ string) Reply {
			return Reply{Text: fmt.Sprintf("Your current timezone is %s.", d.Env.Timezone(ctx))}
		}},
		{IntentJoke, []string{"joke", "tell me a joke"}, say(d.Jokes.Next)},
		{IntentPlay, []string{"play music", "play song"}, func(ctx context.Context, _ string) Reply {
			return Reply{Text: d.Music.Play(ctx)}
		}},
		{IntentStop, []string{"stop music", "stop song"}, say(d.Music.Stop)},
		{IntentExit, []string{"exit", "quit"}, func(context.Context, string) Reply {
			return Reply{Text: Goodbye, Done: true}
		}},
	}
}

// Classify reports which intent an utterance selects.
func (d *Dispatcher) Classify(utterance string) Intent {
	if r, ok := d.match(utterance); ok {
		return r.Intent
	}
	return IntentFallback
}

func (d *Dispatcher) match(utterance string) (Rule, bool) {
	lower := strings.ToLower(utterance)
	for _, r := range d.rules {
		if r.Matches(lower) {
			return r, true
		}
	}
	return Rule{}, false
}

// Handle runs one utterance and speaks the result. It returns false
// when the user asked to leave.
func (d *Dispatcher) Handle(ctx context.Context, utterance string) bool {
	query := strings.ToLower(utterance)

	r, ok := d.match(query)
	if !ok {
		log.Info("Dispatching", "intent", IntentFallback)
		d.speaker.Speak(Thinking)
		d.speaker.Speak(d.qa.Answer(ctx, query))
		return true
	}

	log.Info("Dispatching", "intent", r.Intent)
	reply := r.Handle(ctx, query)
	d.speaker.Speak(reply.Text)

	return !reply.Done
}
