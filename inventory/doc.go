// Package inventory implements the product and category catalogs of one
// signed-in workspace: cached list pipelines, validated mutations and the
// dashboard summary.
//
// Every operation takes an optional explicit owner id. When it is empty the
// owner is the principal of the session bound to the context (see
// backend.WithAccessToken); when neither is available the operation fails
// with session.ErrAuthRequired before touching the backend.
//
// Lists are derived from a raw snapshot kept in an entity cache. A
// successful write invalidates the snapshot and the list returned with the
// mutation result comes from a forced reload.
package inventory
