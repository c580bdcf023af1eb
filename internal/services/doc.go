// Package services holds cross-cutting helpers shared by the external
// collaborator clients: sentinel error markers with a wrapping helper, and
// context keys for correlating log records with the show and stage being
// processed.
package services
