package authinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/iam/auth"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct {
	log *logx.Logger
}

var _ auth.AuditService = (*LogxAuditService)(nil)

func NewLogxAuditService(log *logx.Logger) *LogxAuditService {
	if log == nil {
		log = logx.Default()
	}
	return &LogxAuditService{log: log}
}

func (s *LogxAuditService) LogUnauthorized(ctx context.Context, ip, path, reason string) {
	s.log.WithFields(logx.Fields{
		"audit_event": "unauthorized",
		"ip":          ip,
		"path":        path,
		"reason":      reason,
		"timestamp":   time.Now(),
	}).WithContext(ctx).Warn("Audit: unauthorized request")
}

func (s *LogxAuditService) LogForbidden(ctx context.Context, userID kernel.UserID, role user.Role, path, reason string) {
	s.log.WithFields(logx.Fields{
		"audit_event": "forbidden",
		"user_id":     userID,
		"role":        role,
		"path":        path,
		"reason":      reason,
		"timestamp":   time.Now(),
	}).WithContext(ctx).Warn("Audit: forbidden request")
}

func (s *LogxAuditService) LogUserSynced(ctx context.Context, userID kernel.UserID, externalID kernel.SubjectID, policy auth.SyncPolicy) {
	s.log.WithFields(logx.Fields{
		"audit_event": "user_synced",
		"user_id":     userID,
		"external_id": externalID,
		"policy":      policy,
		"timestamp":   time.Now(),
	}).WithContext(ctx).Info("Audit: user synced")
}

func (s *LogxAuditService) LogLogout(ctx context.Context, userID kernel.UserID, sessionID kernel.SessionID, ip string) {
	s.log.WithFields(logx.Fields{
		"audit_event": "logout",
		"user_id":     userID,
		"session_id":  sessionID,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).WithContext(ctx).Info("Audit: logout")
}
