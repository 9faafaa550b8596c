// Package mongo wraps the official MongoDB driver with connection retry,
// structured logging, health reporting, and the document CRUD operations the
// API needs. It also loads the Versions and Enumerators catalog collections
// surfaced by the config endpoint.
package mongo
