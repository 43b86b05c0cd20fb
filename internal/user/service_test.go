package user_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/roles"
	"github.com/rsecloud/research-management/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	usersByID   map[int64]*user.User
	usersByName map[string]*user.User
	getError    error
	createError error
	nextID      int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByID:   make(map[int64]*user.User),
		usersByName: make(map[string]*user.User),
		nextID:      1,
	}
}

func (m *mockUserRepository) add(u *user.User) *user.User {
	if u.ID == 0 {
		u.ID = m.nextID
		m.nextID++
	}
	m.usersByID[u.ID] = u
	m.usersByName[u.Username] = u
	return u
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.usersByID[id], nil
}

func (m *mockUserRepository) GetByUsername(username string) (*user.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.usersByName[username], nil
}

func (m *mockUserRepository) GetAll() ([]*user.User, error) {
	out := make([]*user.User, 0, len(m.usersByID))
	for _, u := range m.usersByID {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) Create(u *user.User) error {
	if m.createError != nil {
		return m.createError
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	m.add(u)
	return nil
}

var _ = Describe("UserService", func() {
	var (
		svc      *user.Service
		mockRepo *mockUserRepository
		logger   *slog.Logger

		superuser   *user.User
		controller  *user.User
		coordinator *user.User
	)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = user.NewService(mockRepo, logger)

		superuser = mockRepo.add(&user.User{Username: "root", Role: roles.UserRoleNone, IsSuperuser: true, IsActive: true})
		controller = mockRepo.add(&user.User{Username: "controller", Role: roles.UserRoleSystemController, IsActive: true})
		coordinator = mockRepo.add(&user.User{Username: "coordinator", Role: roles.UserRoleResearchCoord, IsActive: true})
	})

	Describe("CreateUser", func() {
		It("should let a superuser create a system controller", func() {
			result, err := svc.CreateUser(superuser, user.CreateUserDTO{
				Username: "newctl",
				Email:    "newctl@example.org",
				Role:     "system_controller",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Role).To(Equal(roles.UserRoleSystemController))
			Expect(result.IsActive).To(BeTrue())
			Expect(*result.CreatedByID).To(Equal(superuser.ID))
		})

		It("should let a system controller create a research coordinator", func() {
			result, err := svc.CreateUser(controller, user.CreateUserDTO{
				Username: "newcoord",
				Email:    "newcoord@example.org",
				Role:     "research_coordinator",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Role).To(Equal(roles.UserRoleResearchCoord))
		})

		It("should deny a system controller creating another system controller", func() {
			result, err := svc.CreateUser(controller, user.CreateUserDTO{
				Username: "peer",
				Email:    "peer@example.org",
				Role:     "system_controller",
			})

			Expect(err).To(Equal(apperrors.ErrPermissionDenied))
			Expect(result).To(BeNil())
		})

		It("should deny a research coordinator creating anyone", func() {
			for _, role := range []string{"system_controller", "research_coordinator", "data_provider_representative", "none"} {
				_, err := svc.CreateUser(coordinator, user.CreateUserDTO{
					Username: "target",
					Email:    "target@example.org",
					Role:     role,
				})
				Expect(err).To(Equal(apperrors.ErrPermissionDenied), role)
			}
		})

		It("should not write anything when permission is denied", func() {
			_, err := svc.CreateUser(coordinator, user.CreateUserDTO{
				Username: "ghost",
				Email:    "ghost@example.org",
				Role:     "data_provider_representative",
			})

			Expect(err).To(Equal(apperrors.ErrPermissionDenied))
			Expect(mockRepo.usersByName).ToNot(HaveKey("ghost"))
		})

		It("should reject an unknown role", func() {
			_, err := svc.CreateUser(superuser, user.CreateUserDTO{
				Username: "someone",
				Email:    "someone@example.org",
				Role:     "administrator",
			})

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("should reject a taken username as a conflict", func() {
			_, err := svc.CreateUser(superuser, user.CreateUserDTO{
				Username: "coordinator",
				Email:    "other@example.org",
				Role:     "research_coordinator",
			})

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeDuplicateUser))
		})

		It("should reject a username with invalid characters", func() {
			_, err := svc.CreateUser(superuser, user.CreateUserDTO{
				Username: "bad name!",
				Email:    "bad@example.org",
				Role:     "research_coordinator",
			})

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.usersByName).ToNot(HaveKey("bad name!"))
		})

		It("should pass through repository errors", func() {
			mockRepo.createError = errors.New("disk full")

			_, err := svc.CreateUser(superuser, user.CreateUserDTO{
				Username: "someone",
				Email:    "someone@example.org",
				Role:     "research_coordinator",
			})
			Expect(err).To(MatchError("disk full"))
		})
	})

	Describe("GetByID", func() {
		It("should return an existing user", func() {
			result, err := svc.GetByID(controller.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Username).To(Equal("controller"))
		})

		It("should return not found for a missing id", func() {
			_, err := svc.GetByID(999)
			Expect(err).To(Equal(apperrors.ErrUserNotFound))
		})
	})

	Describe("GetByUsername", func() {
		It("should return not found for a missing username", func() {
			_, err := svc.GetByUsername("nobody")
			Expect(err).To(Equal(apperrors.ErrUserNotFound))
		})
	})
})

var _ = Describe("User capabilities", func() {
	It("should elevate a superuser regardless of its stored role", func() {
		u := &user.User{Role: roles.UserRoleNone, IsSuperuser: true}

		Expect(u.EffectiveRole()).To(Equal(roles.UserRoleSuperuser))
		Expect(u.CanCreateUsers()).To(BeTrue())
		Expect(u.CanCreateProjects()).To(BeTrue())
	})

	It("should give a plain user no management capabilities", func() {
		u := &user.User{Role: roles.UserRoleNone}

		Expect(u.CanCreateUsers()).To(BeFalse())
		Expect(u.CanCreateProjects()).To(BeFalse())
		Expect(u.CreatableRoles()).To(BeEmpty())
	})

	It("should let a data provider representative create neither users nor projects", func() {
		u := &user.User{Role: roles.UserRoleDataProviderRep}

		Expect(u.CanCreateUsers()).To(BeFalse())
		Expect(u.CanCreateProjects()).To(BeFalse())
	})
})
