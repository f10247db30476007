// Package auth implements account registration, sign-in and sign-out on top
// of backend.Auth.
//
// Form checks here are cosmetic and never replace the backend's own
// constraints. Sign-in of an account whose email address is not confirmed is
// rejected and the session the backend just issued is closed again.
package auth
