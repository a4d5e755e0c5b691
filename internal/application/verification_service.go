package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
	"github.com/oksasatya/storefront-account/pkg/apperror"
	"github.com/oksasatya/storefront-account/pkg/helpers"
)

// VerificationService issues and consumes the six-digit email verification and password reset codes.
type VerificationService struct {
	Users   repository.UserRepository
	Mailer  CodeMailer
	Audit   repository.AuditRepository
	Logger  *logrus.Logger
	CodeTTL time.Duration
	Now     func() time.Time
	GenCode func() (string, error)
}

type ResetPasswordInput struct {
	Email           string
	Code            string
	NewPassword     string
	ConfirmPassword string
}

func (s *VerificationService) now() time.Time { return clock(s.Now) }

func (s *VerificationService) audit(ctx context.Context, action string, u *entity.User, email string, meta RequestMeta) {
	recordAudit(ctx, s.Audit, s.Logger, s.now(), action, u, email, meta, nil)
}

// issue stores a fresh code for purpose and mails it. A mail failure leaves the code in place.
func (s *VerificationService) issue(ctx context.Context, u *entity.User, purpose entity.CodePurpose, meta RequestMeta) error {
	gen := s.GenCode
	if gen == nil {
		gen = helpers.GenCode
	}
	code, err := gen()
	if err != nil {
		return apperror.Internal(err)
	}
	issued := s.now()
	otc := entity.NewOneTimeCode(code, issued, s.CodeTTL)
	if err := s.Users.SetCode(ctx, u.ID, purpose, otc); err != nil {
		return err
	}
	err = s.Mailer.SendCode(ctx, CodeMessage{
		To:        u.Email,
		Name:      u.Name,
		Code:      code,
		Purpose:   purpose,
		IssuedAt:  issued,
		ExpiresAt: otc.ExpiresAt,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "purpose": string(purpose)}).Error("code email failed")
		}
		return apperror.Wrap(ErrMailDelivery, err)
	}
	return nil
}

// check validates supplied against the pending code and clears it when expired.
func (s *VerificationService) check(ctx context.Context, u *entity.User, purpose entity.CodePurpose, supplied string) error {
	err := u.Code(purpose).Check(supplied, s.now())
	if errors.Is(err, entity.ErrCodeExpired) {
		if cerr := s.Users.ClearCode(ctx, u.ID, purpose); cerr != nil && s.Logger != nil {
			s.Logger.WithError(cerr).WithField("user_id", u.ID).Warn("clear expired code failed")
		}
	}
	return err
}

// RequestEmailVerification mails a verification code to the signed-in user.
func (s *VerificationService) RequestEmailVerification(ctx context.Context, userID string, meta RequestMeta) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}
	if err := s.issue(ctx, u, entity.PurposeEmailVerification, meta); err != nil {
		return err
	}
	s.audit(ctx, entity.AuditVerifyRequest, u, "", meta)
	return nil
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *VerificationService) VerifyEmail(ctx context.Context, email, code string, meta RequestMeta) error {
	u, err := s.Users.GetByEmailWithSecrets(ctx, email)
	if err != nil {
		return err
	}
	if err := s.check(ctx, u, entity.PurposeEmailVerification, code); err != nil {
		return err
	}
	ok, err := s.Users.ConsumeVerificationCode(ctx, u.ID, code, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrCodeNotPending
	}
	s.audit(ctx, entity.AuditVerifyConfirm, u, "", meta)
	return nil
}

// ForgotPassword mails a reset code to a local account.
func (s *VerificationService) ForgotPassword(ctx context.Context, email string, meta RequestMeta) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !u.Identity.IsLocal() {
		return ErrNotLocalAccount
	}
	if err := s.issue(ctx, u, entity.PurposePasswordReset, meta); err != nil {
		return err
	}
	s.audit(ctx, entity.AuditResetRequest, u, "", meta)
	return nil
}

// resetTarget loads the user for a reset step. A missing user reads as no pending code.
func (s *VerificationService) resetTarget(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Users.GetByEmailWithSecrets(ctx, email)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, entity.ErrCodeNotPending
	}
	return u, err
}

// VerifyResetCode checks a reset code without consuming it.
func (s *VerificationService) VerifyResetCode(ctx context.Context, email, code string) error {
	u, err := s.resetTarget(ctx, email)
	if err != nil {
		return err
	}
	return s.check(ctx, u, entity.PurposePasswordReset, code)
}

// ResetPassword re-checks the reset code and commits the new password in one conditional write.
func (s *VerificationService) ResetPassword(ctx context.Context, in ResetPasswordInput, meta RequestMeta) error {
	if in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	u, err := s.resetTarget(ctx, in.Email)
	if err != nil {
		return err
	}
	if err := s.check(ctx, u, entity.PurposePasswordReset, in.Code); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(in.NewPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	ok, err := s.Users.CommitPasswordReset(ctx, u.ID, in.Code, s.now(), hash)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrCodeNotPending
	}
	s.audit(ctx, entity.AuditResetConfirm, u, "", meta)
	return nil
}
