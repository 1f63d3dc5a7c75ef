package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/moderation/service"
	"skripta.hr/forum/pkg/apperror"
)

type fakeUserRepo struct {
	users   map[string]*entity.User
	updates []map[string]any
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, user := range users {
		repo.users[user.ID.String()] = user
	}
	return repo
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) UpdateModeration(ctx context.Context, userID uuid.UUID, fields map[string]any) error {
	r.updates = append(r.updates, fields)
	return nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByUsernames(ctx context.Context, usernames []string) ([]*entity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.User, int64, error) {
	var all []*entity.User
	for _, user := range r.users {
		all = append(all, user)
	}
	return all, int64(len(all)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func TestTimeoutAcceptsLadderDurations(t *testing.T) {
	adminID := uuid.New()
	target := &entity.User{ID: uuid.New(), Role: entity.RoleStudent}

	for _, hours := range service.TimeoutHours {
		repo := newFakeUserRepo(target)
		svc := service.NewModerationService(repo, nil)

		if err := svc.Timeout(context.Background(), adminID, target.ID, hours, "smirivanje rasprave"); err != nil {
			t.Fatalf("timeout of %dh rejected: %v", hours, err)
		}

		if len(repo.updates) != 1 {
			t.Fatalf("expected one update for %dh, got %d", hours, len(repo.updates))
		}

		until, ok := repo.updates[0]["timeout_until"].(time.Time)
		if !ok {
			t.Fatalf("timeout_until not set for %dh", hours)
		}
		want := time.Duration(hours) * time.Hour
		if diff := time.Until(until) - want; diff > time.Minute || diff < -time.Minute {
			t.Fatalf("timeout_until for %dh off by %v", hours, diff)
		}
	}
}

func TestTimeoutRejectsArbitraryDuration(t *testing.T) {
	adminID := uuid.New()
	target := &entity.User{ID: uuid.New(), Role: entity.RoleStudent}
	repo := newFakeUserRepo(target)
	svc := service.NewModerationService(repo, nil)

	for _, hours := range []int{0, 2, 48, 200, -1} {
		err := svc.Timeout(context.Background(), adminID, target.ID, hours, "x")
		if !errors.Is(err, apperror.ErrBadRequest) {
			t.Fatalf("timeout of %dh should be rejected, got %v", hours, err)
		}
	}

	if len(repo.updates) != 0 {
		t.Fatalf("rejected timeouts must not write, got %d updates", len(repo.updates))
	}
}

func TestBanRefreshesExistingBan(t *testing.T) {
	adminID := uuid.New()
	target := &entity.User{ID: uuid.New(), Role: entity.RoleStudent, IsBanned: true}
	repo := newFakeUserRepo(target)
	svc := service.NewModerationService(repo, nil)

	if err := svc.Ban(context.Background(), adminID, target.ID, "novi razlog"); err != nil {
		t.Fatalf("banning an already banned user must not fail: %v", err)
	}

	if len(repo.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(repo.updates))
	}
	if repo.updates[0]["ban_reason"] != "novi razlog" {
		t.Fatalf("ban reason not refreshed: %v", repo.updates[0])
	}
}

func TestBanRejectsAdminTarget(t *testing.T) {
	adminID := uuid.New()
	target := &entity.User{ID: uuid.New(), Role: entity.RoleAdmin}
	repo := newFakeUserRepo(target)
	svc := service.NewModerationService(repo, nil)

	err := svc.Ban(context.Background(), adminID, target.ID, "x")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestUnbanIsIdempotent(t *testing.T) {
	adminID := uuid.New()
	target := &entity.User{ID: uuid.New(), Role: entity.RoleStudent}
	repo := newFakeUserRepo(target)
	svc := service.NewModerationService(repo, nil)

	if err := svc.Unban(context.Background(), adminID, target.ID); err != nil {
		t.Fatalf("unbanning a user who is not banned must be a no-op: %v", err)
	}
	if err := svc.Unban(context.Background(), adminID, target.ID); err != nil {
		t.Fatalf("second unban failed: %v", err)
	}

	for _, update := range repo.updates {
		if update["is_banned"] != false {
			t.Fatalf("unban must clear the ban flag: %v", update)
		}
	}
}

func TestModerationRejectsSelfTarget(t *testing.T) {
	adminID := uuid.New()
	repo := newFakeUserRepo(&entity.User{ID: adminID, Role: entity.RoleAdmin})
	svc := service.NewModerationService(repo, nil)

	err := svc.Ban(context.Background(), adminID, adminID, "x")
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected bad request for self-moderation, got %v", err)
	}
}

func TestModerationUnknownTarget(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewModerationService(repo, nil)

	err := svc.Warn(context.Background(), uuid.New(), uuid.New(), "x")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetRoleValidatesRole(t *testing.T) {
	adminID := uuid.New()
	target := &entity.User{ID: uuid.New(), Role: entity.RoleStudent}
	repo := newFakeUserRepo(target)
	svc := service.NewModerationService(repo, nil)

	if err := svc.SetRole(context.Background(), adminID, target.ID, "moderator"); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("unknown role should be rejected, got %v", err)
	}

	if err := svc.SetRole(context.Background(), adminID, target.ID, entity.RoleAdmin); err != nil {
		t.Fatalf("promoting to admin failed: %v", err)
	}
	if repo.updates[len(repo.updates)-1]["role"] != entity.RoleAdmin {
		t.Fatalf("role update not recorded: %v", repo.updates)
	}
}
