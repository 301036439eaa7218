package notice

// Severity ranks a notice. The aggregate severity of a Result is the maximum
// across its notices, 0 when there are none.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityDanger
)

// Label is the badge class the dashboard renders for s.
func (s Severity) Label() string {
	switch {
	case s <= SeverityNone:
		return ""
	case s == SeverityInfo:
		return "info"
	case s == SeverityWarning:
		return "warning"
	default:
		return "danger"
	}
}

// Notice is one advisory message. Message and Detail may embed markup;
// an empty Detail means there is none.
type Notice struct {
	Message  string   `json:"message"`
	Detail   string   `json:"detail,omitempty"`
	Severity Severity `json:"severity"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Severity Severity `json:"severity"`
	Notices  []Notice `json:"notices"`
}

// Empty reports whether no check fired.
func (r Result) Empty() bool { return len(r.Notices) == 0 }

func (r *Result) add(n Notice) {
	r.Notices = append(r.Notices, n)
	if n.Severity > r.Severity {
		r.Severity = n.Severity
	}
}
