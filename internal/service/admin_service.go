package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-voicedesk-be/internal/dto"
	"ai-voicedesk-be/internal/entity"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/repository/specification"
	"ai-voicedesk-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAdminService interface {
	Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error)
	ListUsers(ctx context.Context, page, perPage int) ([]dto.UserResponse, int64, error)
	CreateUser(ctx context.Context, req *dto.AdminCreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error)
	ToggleUserStatus(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	UpsertPackage(ctx context.Context, id *uuid.UUID, req *dto.UpsertPackageRequest) (*dto.PackageResponse, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error
	Logs(ctx context.Context, level string, limit, offset int) ([]logger.LogEntry, error)
}

type adminService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewAdminService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IAdminService {
	return &adminService{uowFactory: uowFactory, log: log}
}

func (s *adminService) Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	users, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	assistants, err := uow.AssistantRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	subscribers, err := uow.SubscriptionRepository().CountActiveSubscribers(ctx)
	if err != nil {
		return nil, err
	}
	callStats, err := uow.CallLogRepository().Stats(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := uow.TransactionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.TransactionStatusCompleted)},
	)
	if err != nil {
		return nil, err
	}
	var revenue float64
	for _, tx := range completed {
		revenue += tx.Amount
	}

	return &dto.AdminDashboardResponse{
		TotalUsers:        users,
		TotalAssistants:   assistants,
		ActiveSubscribers: subscribers,
		TotalCalls:        callStats.TotalCalls,
		TotalCallMinutes:  callStats.TotalDuration / 60,
		TotalRevenue:      revenue,
	}, nil
}

func (s *adminService) ListUsers(ctx context.Context, page, perPage int) ([]dto.UserResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	users, err := uow.UserRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.UserResponse, len(users))
	for i, user := range users {
		out[i] = toUserResponse(user)
	}
	return out, total, nil
}

func (s *adminService) CreateUser(ctx context.Context, req *dto.AdminCreateUserRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := entity.UserRoleUser
	if req.Role == string(entity.UserRoleAdmin) {
		role = entity.UserRoleAdmin
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	res := toUserResponse(user)
	return &res, nil
}

func (s *adminService) UpdateUser(ctx context.Context, userID uuid.UUID, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	if req.Email != "" && req.Email != user.Email {
		taken, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
		if err != nil {
			return nil, err
		}
		if taken != nil {
			return nil, errors.New("email already registered")
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		user.Role = entity.UserRole(req.Role)
	}
	user.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	res := toUserResponse(user)
	return &res, nil
}

func (s *adminService) ToggleUserStatus(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	if user.Status == entity.UserStatusActive {
		user.Status = entity.UserStatusBlocked
	} else {
		user.Status = entity.UserStatusActive
	}
	user.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("admin", "user status toggled", map[string]interface{}{
		"user_id": userID.String(), "status": string(user.Status),
	})
	res := toUserResponse(user)
	return &res, nil
}

func (s *adminService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}
	if user.IsAdmin() {
		return errors.New("admin accounts cannot be deleted")
	}
	return uow.UserRepository().Delete(ctx, userID)
}

func (s *adminService) UpsertPackage(ctx context.Context, id *uuid.UUID, req *dto.UpsertPackageRequest) (*dto.PackageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var pkg *entity.SubscriptionPackage
	if id != nil {
		var err error
		pkg, err = uow.SubscriptionRepository().FindOnePackage(ctx, specification.ByID{ID: *id})
		if err != nil {
			return nil, err
		}
		if pkg == nil {
			return nil, errors.New("package not found")
		}
	} else {
		taken, err := uow.SubscriptionRepository().FindOnePackage(ctx, specification.BySlug{Slug: req.Slug})
		if err != nil {
			return nil, err
		}
		if taken != nil {
			return nil, fmt.Errorf("package slug %q already in use", req.Slug)
		}
		pkg = &entity.SubscriptionPackage{Id: uuid.New(), CreatedAt: time.Now()}
	}

	pkg.Name = req.Name
	pkg.Slug = req.Slug
	pkg.Description = req.Description
	pkg.Price = req.Price
	pkg.VoiceAgentsLimit = req.VoiceAgentsLimit
	pkg.MonthlyMinutesLimit = req.MonthlyMinutesLimit
	pkg.Features = req.Features
	pkg.SupportLevel = req.SupportLevel
	pkg.AnalyticsLevel = req.AnalyticsLevel
	pkg.IsPopular = req.IsPopular
	pkg.IsActive = req.IsActive
	pkg.SortOrder = req.SortOrder
	pkg.UpdatedAt = time.Now()

	if id != nil {
		if err := uow.SubscriptionRepository().UpdatePackage(ctx, pkg); err != nil {
			return nil, err
		}
	} else {
		if err := uow.SubscriptionRepository().CreatePackage(ctx, pkg); err != nil {
			return nil, err
		}
	}

	res := toPackageResponse(pkg)
	return &res, nil
}

func (s *adminService) DeletePackage(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	active, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.Filter("package_id", id),
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusActive),
			string(entity.SubscriptionStatusTrial),
		}},
	)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return errors.New("package has active subscriptions")
	}
	return uow.SubscriptionRepository().DeletePackage(ctx, id)
}

func (s *adminService) Logs(ctx context.Context, level string, limit, offset int) ([]logger.LogEntry, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.log.GetLogs(level, limit, offset)
}
