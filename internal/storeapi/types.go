package storeapi

// Credentials is the login request.
type Credentials struct {
	Username string
	Password string
}

// Registration is a new account. Address and phone are filled with
// placeholders on the wire; the demo API requires them but the storefront
// never asks for them.
type Registration struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}
