package auth

// Request is the normalized view of an incoming HTTP request. The framework
// adapter builds one per request; the engine never touches raw headers or
// framework request objects.
type Request struct {
	Method string
	Path   string

	// Query holds the flattened query string, last value wins per key.
	Query map[string]string

	// Cookies holds the pre-parsed request cookies by name.
	Cookies map[string]string
}

// Directive tells the caller how to answer the request. It is one of
// Redirect, StatusOnly or Continue.
type Directive interface {
	directive()
}

// Redirect instructs the caller to issue an HTTP redirect.
type Redirect struct {
	Location string
}

// StatusOnly instructs the caller to answer with a bare status code. Despite
// often carrying a 4xx, it is a plain response shape, not a fatal error.
type StatusOnly struct {
	Status int
}

// Continue signals that the request is not an auth route and the caller
// should proceed with its own handling.
type Continue struct{}

func (Redirect) directive()   {}
func (StatusOnly) directive() {}
func (Continue) directive()   {}

// Result is the uniform outcome of Engine.Handle: the session verdict, the
// cookie mutations to apply and the response directive.
type Result struct {
	User      *User
	Cookies   []Cookie
	Directive Directive
}

// outcome pairs a directive with the cookies an individual auth operation
// produced, before the facade merges them with the session-validation ones.
type outcome struct {
	directive Directive
	cookies   []Cookie
}
