// Package backend defines the contract of the hosted authentication and
// database service the inventory talks to.
//
// A Client exposes an Auth surface (email/password accounts and sessions)
// and one Table per owner-scoped entity. Tables accept a small query
// language of equality and membership predicates plus ordering:
//
//	rows, err := client.Products().Select(ctx, backend.NewQuery().
//		Eq(backend.ColUserID, ownerID).
//		Order(backend.ColID, true))
//
// The current session travels in the context. Bind the caller's access
// token with WithAccessToken before calling GetSession, GetUser or SignOut.
//
// Every failure is returned as an *Error whose message is the backend's own
// message, suitable for showing to the user as is.
package backend
