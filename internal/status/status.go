// Package status implements a read-only HTTP introspection server: the
// currently configured rules, the pedal state, and the retained event
// history, each as JSON. It never mutates the matcher it reports on.
package status

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/larsks/airdancer/internal/matcher"
	"github.com/larsks/airdancer/internal/patternengine"
	"github.com/larsks/airdancer/internal/pedalevent"
)

// Reporter is the slice of Matcher that the status server depends on.
type Reporter interface {
	Rules() []patternengine.Rule
	Snapshot() (pressed map[pedalevent.Button]bool, hist []matcher.HistoryEntry)
}

// NewHandler builds the chi router serving /rules, /state, and /history.
// CORS is wide open (GET only, no credentials) since the surface is
// read-only and carries no secrets beyond command strings already present in
// the loaded pattern file.
func NewHandler(r Reporter) http.Handler {
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	mux.Get("/rules", handleRules(r))
	mux.Get("/state", handleState(r))
	mux.Get("/history", handleHistory(r))

	return mux
}

// ruleView is the wire shape for one rule: the human-readable pattern text
// plus the fields a dashboard would otherwise have to re-derive.
type ruleView struct {
	Pattern string `json:"pattern"`
	Command string `json:"command"`
}

func handleRules(r Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		rules := r.Rules()
		views := make([]ruleView, len(rules))
		for i, rule := range rules {
			views[i] = ruleView{
				Pattern: patternengine.FormatPattern(rule),
				Command: rule.Command,
			}
		}
		writeJSON(w, views)
	}
}

func handleState(r Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		pressed, _ := r.Snapshot()
		writeJSON(w, pressed)
	}
}

// historyView is the wire shape for one retained history entry.
type historyView struct {
	Button int    `json:"button"`
	Action string `json:"action"`
	Used   uint32 `json:"used"`
}

func handleHistory(r Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		_, hist := r.Snapshot()
		views := make([]historyView, len(hist))
		for i, e := range hist {
			views[i] = historyView{
				Button: int(e.Event.Button),
				Action: e.Event.Action.String(),
				Used:   e.Used,
			}
		}
		writeJSON(w, views)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
