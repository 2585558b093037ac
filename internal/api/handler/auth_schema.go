package handler

// signupRequest is the signup form body.
type signupRequest struct {
	Name     string `form:"name" validate:"required,alphanum,maxlen=20"`
	Email    string `form:"email" validate:"required,email,email_domain,maxlen=20"`
	Password string `form:"password" validate:"required,maxlen=20"`
}

// loginRequest is the login form body.
type loginRequest struct {
	Email    string `form:"email" validate:"required,email,email_domain,maxlen=20"`
	Password string `form:"password" validate:"required,maxlen=20"`
}

// probeRequest carries the identifier of the injection demonstration lookup
// once it is known to be a plain string.
type probeRequest struct {
	User string `form:"user" validate:"required,maxlen=20"`
}

// subscribeRequest is the contact form body.
type subscribeRequest struct {
	Email string `form:"email"`
}
