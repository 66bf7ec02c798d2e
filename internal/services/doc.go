// Package services holds cross-cutting helpers shared by the external
// collaborator clients: the sentinel error taxonomy used to classify failures
// at collaborator boundaries, and context annotations that thread queue item
// and correlation identifiers through pipeline calls.
package services
