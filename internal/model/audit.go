// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Audit actions
const (
	AuditActionApprove     = "approve"
	AuditActionReject      = "reject"
	AuditActionGrantAdmin  = "grant-admin"
	AuditActionRevokeAdmin = "revoke-admin"
)

// AuditTargetUser is the target kind of role changes. Submission decisions
// use the submission Kind as target kind.
const AuditTargetUser = "user"

// AuditEntry is one immutable moderation decision.
type AuditEntry struct {
	ID         int64     `json:"id"`
	DecisionID string    `json:"decisionId"`
	ActorID    *int64    `json:"actorId"`
	TargetKind string    `json:"targetKind"`
	TargetID   int64     `json:"targetId"`
	Action     string    `json:"action"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ApprovalAction returns the audit action for an approval flag value.
func ApprovalAction(approved bool) string {
	if approved {
		return AuditActionApprove
	}
	return AuditActionReject
}
