// Package recordstore talks to the interview record store REST API.
//
// The pipeline reads candidate details before enqueueing a recording and
// writes destination links back after a successful archive. Missing and
// already-archived records surface as distinguished sentinel errors so
// intake can fail fast.
package recordstore
