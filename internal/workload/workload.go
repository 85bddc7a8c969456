// Package workload builds the request descriptors a benchmark batch executes.
package workload

// Request describes a single HTTP request to issue. Body holds form fields
// that are URL-encoded when the request is sent; a nil Body means no payload.
// Descriptors are treated as immutable once generated.
type Request struct {
	Method string
	URL    string
	Body   map[string]string
}

// clone returns a copy with its own body map so descriptors never share
// mutable state.
func (r Request) clone() Request {
	if r.Body == nil {
		return r
	}
	body := make(map[string]string, len(r.Body))
	for k, v := range r.Body {
		body[k] = v
	}
	r.Body = body
	return r
}

// Generator produces a bounded sequence of request descriptors.
type Generator interface {
	Generate(count int) []Request
}

// Repeat generates count identical copies of a template request. This is the
// default strategy: N identical requests against one URL.
type Repeat struct {
	template Request
}

// NewRepeat creates a Repeat generator for the given template.
func NewRepeat(template Request) *Repeat {
	return &Repeat{template: template}
}

// Generate returns exactly count descriptors equal to the template. A count
// of zero (or less) yields an empty sequence.
func (g *Repeat) Generate(count int) []Request {
	if count <= 0 {
		return []Request{}
	}
	out := make([]Request, count)
	for i := range out {
		out[i] = g.template.clone()
	}
	return out
}

// RoundRobin cycles through a fixed set of templates, producing varied
// requests without any change to downstream components.
type RoundRobin struct {
	templates []Request
}

// NewRoundRobin creates a RoundRobin generator over the given templates.
func NewRoundRobin(templates ...Request) *RoundRobin {
	return &RoundRobin{templates: templates}
}

// Generate returns exactly count descriptors, cycling through the templates
// in order.
func (g *RoundRobin) Generate(count int) []Request {
	if count <= 0 || len(g.templates) == 0 {
		return []Request{}
	}
	out := make([]Request, count)
	for i := range out {
		out[i] = g.templates[i%len(g.templates)].clone()
	}
	return out
}
