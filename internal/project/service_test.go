package project_test

import (
	stderrors "errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/dataset"
	"github.com/rsecloud/research-management/internal/project"
	"github.com/rsecloud/research-management/internal/roles"
	"github.com/rsecloud/research-management/internal/user"
)

func TestProjectService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Project Service Suite")
}

type participantKey struct {
	projectID int64
	userID    int64
}

// Mock repository for testing
type mockProjectRepository struct {
	projects         map[int64]*project.Project
	participants     map[participantKey]*project.Participant
	usersByName      map[string]int64
	datasetLinks     map[int64][]int64
	getError         error
	createError      error
	participantError error
	nextProjectID    int64
	nextUserID       int64
	nextRowID        int64
	writeCount       int
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{
		projects:      make(map[int64]*project.Project),
		participants:  make(map[participantKey]*project.Participant),
		usersByName:   make(map[string]int64),
		datasetLinks:  make(map[int64][]int64),
		nextProjectID: 1,
		nextUserID:    1000,
		nextRowID:     1,
	}
}

func (m *mockProjectRepository) addProject(p *project.Project) *project.Project {
	if p.ID == 0 {
		p.ID = m.nextProjectID
		m.nextProjectID++
	}
	m.projects[p.ID] = p
	return p
}

func (m *mockProjectRepository) addParticipant(projectID, userID int64, role roles.ProjectRole) {
	m.participants[participantKey{projectID, userID}] = &project.Participant{
		ID:        m.nextRowID,
		UserID:    userID,
		ProjectID: projectID,
		Role:      role,
		CreatedAt: time.Now(),
	}
	m.nextRowID++
}

func (m *mockProjectRepository) GetByID(id int64) (*project.Project, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.projects[id], nil
}

func (m *mockProjectRepository) GetAll() ([]*project.Project, error) {
	out := make([]*project.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProjectRepository) GetForUser(userID int64) ([]*project.Project, error) {
	var out []*project.Project
	for _, p := range m.projects {
		if p.CreatorID == userID {
			out = append(out, p)
			continue
		}
		if _, ok := m.participants[participantKey{p.ID, userID}]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProjectRepository) GetEditableForUser(userID int64, editorRoles []roles.ProjectRole) ([]*project.Project, error) {
	var out []*project.Project
	for _, p := range m.projects {
		if p.CreatorID == userID {
			out = append(out, p)
			continue
		}
		participant, ok := m.participants[participantKey{p.ID, userID}]
		if !ok {
			continue
		}
		for _, r := range editorRoles {
			if participant.Role == r {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (m *mockProjectRepository) Create(p *project.Project) error {
	if m.createError != nil {
		return m.createError
	}
	m.addProject(p)
	m.writeCount++
	return nil
}

func (m *mockProjectRepository) GetParticipant(projectID, userID int64) (*project.Participant, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.participants[participantKey{projectID, userID}], nil
}

func (m *mockProjectRepository) ListParticipants(projectID int64) ([]*project.Participant, error) {
	var out []*project.Participant
	for key, p := range m.participants {
		if key.projectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProjectRepository) CreateParticipant(projectID int64, username, email string, role roles.ProjectRole, creatorID int64) (*project.Participant, error) {
	if m.participantError != nil {
		return nil, m.participantError
	}

	userID, exists := m.usersByName[username]
	if !exists {
		userID = m.nextUserID
		m.nextUserID++
		m.usersByName[username] = userID
		m.writeCount++
	}

	key := participantKey{projectID, userID}
	if _, dup := m.participants[key]; dup {
		return nil, apperrors.NewDuplicateParticipantError(username)
	}

	participant := &project.Participant{
		ID:          m.nextRowID,
		UserID:      userID,
		ProjectID:   projectID,
		Username:    username,
		Role:        role,
		CreatedByID: &creatorID,
		CreatedAt:   time.Now(),
	}
	m.nextRowID++
	m.participants[key] = participant
	m.writeCount++
	return participant, nil
}

func (m *mockProjectRepository) AttachDataset(projectID, datasetID int64) error {
	m.datasetLinks[projectID] = append(m.datasetLinks[projectID], datasetID)
	m.writeCount++
	return nil
}

func (m *mockProjectRepository) ListDatasets(projectID int64) ([]*dataset.Dataset, error) {
	out := make([]*dataset.Dataset, 0, len(m.datasetLinks[projectID]))
	for _, id := range m.datasetLinks[projectID] {
		out = append(out, &dataset.Dataset{ID: id, Tier: dataset.DefaultTier})
	}
	return out, nil
}

// Mock dataset lookup for attachment checks
type mockDatasetAPI struct {
	datasets map[int64]*dataset.Dataset
}

func (m *mockDatasetAPI) GetByID(id int64) (*dataset.Dataset, error) {
	d, ok := m.datasets[id]
	if !ok {
		return nil, apperrors.ErrDatasetNotFound
	}
	return d, nil
}

var _ = Describe("ProjectService", func() {
	var (
		svc      *project.Service
		mockRepo *mockProjectRepository
		mockDS   *mockDatasetAPI
		logger   *slog.Logger

		superuser   *user.User
		controller  *user.User
		coordinator *user.User
		plainUser   *user.User
	)

	BeforeEach(func() {
		mockRepo = newMockProjectRepository()
		mockDS = &mockDatasetAPI{datasets: make(map[int64]*dataset.Dataset)}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = project.NewService(mockRepo, mockDS, logger)

		superuser = &user.User{ID: 1, Username: "root", Role: roles.UserRoleNone, IsSuperuser: true, IsActive: true}
		controller = &user.User{ID: 2, Username: "controller", Role: roles.UserRoleSystemController, IsActive: true}
		coordinator = &user.User{ID: 3, Username: "coordinator", Role: roles.UserRoleResearchCoord, IsActive: true}
		plainUser = &user.User{ID: 4, Username: "member", Role: roles.UserRoleNone, IsActive: true}
	})

	Describe("EffectiveRole", func() {
		var p *project.Project

		BeforeEach(func() {
			p = mockRepo.addProject(&project.Project{Name: "study", CreatorID: coordinator.ID})
		})

		It("should resolve a superuser to project admin regardless of participation", func() {
			role, ok, err := svc.EffectiveRole(superuser, p)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(role).To(Equal(roles.ProjectRoleAdmin))
		})

		It("should resolve a system controller to project admin regardless of participation", func() {
			role, ok, err := svc.EffectiveRole(controller, p)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(role).To(Equal(roles.ProjectRoleAdmin))
		})

		It("should resolve the creator to project admin even with no participant row", func() {
			role, ok, err := svc.EffectiveRole(coordinator, p)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(role).To(Equal(roles.ProjectRoleAdmin))
		})

		It("should ignore a participant row for a superuser", func() {
			// a weaker participant role must not demote the global one
			mockRepo.addParticipant(p.ID, superuser.ID, roles.ProjectRoleResearcher)

			role, _, err := svc.EffectiveRole(superuser, p)
			Expect(err).ToNot(HaveOccurred())
			Expect(role).To(Equal(roles.ProjectRoleAdmin))
		})

		It("should use the participant row for everyone else", func() {
			mockRepo.addParticipant(p.ID, plainUser.ID, roles.ProjectRoleReferee)

			role, ok, err := svc.EffectiveRole(plainUser, p)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(role).To(Equal(roles.ProjectRoleReferee))
		})

		It("should report no relation for a non-participant", func() {
			_, ok, err := svc.EffectiveRole(plainUser, p)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should give the same answer on repeated calls", func() {
			mockRepo.addParticipant(p.ID, plainUser.ID, roles.ProjectRoleInvestigator)

			first, ok1, _ := svc.EffectiveRole(plainUser, p)
			second, ok2, _ := svc.EffectiveRole(plainUser, p)
			Expect(ok1).To(Equal(ok2))
			Expect(first).To(Equal(second))
		})
	})

	Describe("CreateProject", func() {
		It("should allow a research coordinator to create a project", func() {
			result, err := svc.CreateProject(coordinator, project.CreateProjectDTO{Name: "new-study"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.CreatorID).To(Equal(coordinator.ID))
			Expect(result.ID).To(BeNumerically(">", 0))
		})

		It("should deny a plain user", func() {
			result, err := svc.CreateProject(plainUser, project.CreateProjectDTO{Name: "new-study"})

			Expect(err).To(Equal(apperrors.ErrPermissionDenied))
			Expect(result).To(BeNil())
			Expect(mockRepo.writeCount).To(Equal(0))
		})

		It("should reject an empty name before touching storage", func() {
			_, err := svc.CreateProject(coordinator, project.CreateProjectDTO{Name: ""})

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.writeCount).To(Equal(0))
		})
	})

	Describe("GetProject", func() {
		var p *project.Project

		BeforeEach(func() {
			p = mockRepo.addProject(&project.Project{Name: "study", CreatorID: coordinator.ID})
		})

		It("should return the project to its creator", func() {
			result, err := svc.GetProject(coordinator, p.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.ID).To(Equal(p.ID))
		})

		It("should hide an unrelated project as not found", func() {
			result, err := svc.GetProject(plainUser, p.ID)

			Expect(err).To(Equal(apperrors.ErrProjectNotFound))
			Expect(result).To(BeNil())
		})

		It("should return not found for a missing project", func() {
			_, err := svc.GetProject(superuser, 999)
			Expect(err).To(Equal(apperrors.ErrProjectNotFound))
		})
	})

	Describe("VisibleProjects", func() {
		BeforeEach(func() {
			mockRepo.addProject(&project.Project{Name: "one", CreatorID: coordinator.ID})
			two := mockRepo.addProject(&project.Project{Name: "two", CreatorID: superuser.ID})
			mockRepo.addProject(&project.Project{Name: "three", CreatorID: superuser.ID})
			mockRepo.addParticipant(two.ID, plainUser.ID, roles.ProjectRoleResearcher)
		})

		It("should show everything to a superuser", func() {
			result, err := svc.VisibleProjects(superuser)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(3))
		})

		It("should show everything to a system controller", func() {
			result, err := svc.VisibleProjects(controller)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(3))
		})

		It("should show a plain user only projects they participate in", func() {
			result, err := svc.VisibleProjects(plainUser)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(1))
			Expect(result[0].Name).To(Equal("two"))
		})

		It("should show a creator their own projects", func() {
			result, err := svc.VisibleProjects(coordinator)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(1))
			Expect(result[0].Name).To(Equal("one"))
		})

		It("should reflect a new participant row immediately", func() {
			before, _ := svc.VisibleProjects(plainUser)
			Expect(before).To(HaveLen(1))

			three, _ := svc.VisibleProjects(controller)
			for _, p := range three {
				if p.Name == "three" {
					mockRepo.addParticipant(p.ID, plainUser.ID, roles.ProjectRoleReferee)
				}
			}

			after, _ := svc.VisibleProjects(plainUser)
			Expect(after).To(HaveLen(2))
		})
	})

	Describe("EditableProjects", func() {
		BeforeEach(func() {
			asAdmin := mockRepo.addProject(&project.Project{Name: "as-admin", CreatorID: superuser.ID})
			asInvestigator := mockRepo.addProject(&project.Project{Name: "as-investigator", CreatorID: superuser.ID})
			asResearcher := mockRepo.addProject(&project.Project{Name: "as-researcher", CreatorID: superuser.ID})
			asReferee := mockRepo.addProject(&project.Project{Name: "as-referee", CreatorID: superuser.ID})

			mockRepo.addParticipant(asAdmin.ID, plainUser.ID, roles.ProjectRoleAdmin)
			mockRepo.addParticipant(asInvestigator.ID, plainUser.ID, roles.ProjectRoleInvestigator)
			mockRepo.addParticipant(asResearcher.ID, plainUser.ID, roles.ProjectRoleResearcher)
			mockRepo.addParticipant(asReferee.ID, plainUser.ID, roles.ProjectRoleReferee)
		})

		It("should include admin and investigator projects but not researcher or referee ones", func() {
			result, err := svc.EditableProjects(plainUser)

			Expect(err).ToNot(HaveOccurred())
			names := make([]string, 0, len(result))
			for _, p := range result {
				names = append(names, p.Name)
			}
			Expect(names).To(ConsistOf("as-admin", "as-investigator"))
		})

		It("should include everything for a system controller", func() {
			result, err := svc.EditableProjects(controller)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(4))
		})
	})

	Describe("AddParticipant", func() {
		var p *project.Project

		BeforeEach(func() {
			p = mockRepo.addProject(&project.Project{Name: "study", CreatorID: coordinator.ID})
		})

		It("should let the creator add a researcher", func() {
			result, err := svc.AddParticipant(coordinator, p.ID, project.AddParticipantDTO{
				Username: "alice",
				Email:    "alice@example.org",
				Role:     "researcher",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Role).To(Equal(roles.ProjectRoleResearcher))
			Expect(result.ProjectID).To(Equal(p.ID))
			Expect(*result.CreatedByID).To(Equal(coordinator.ID))
		})

		It("should let an investigator participant add a researcher", func() {
			mockRepo.addParticipant(p.ID, plainUser.ID, roles.ProjectRoleInvestigator)

			result, err := svc.AddParticipant(plainUser, p.ID, project.AddParticipantDTO{
				Username: "bob",
				Role:     "researcher",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Role).To(Equal(roles.ProjectRoleResearcher))
		})

		It("should deny an investigator adding another investigator", func() {
			mockRepo.addParticipant(p.ID, plainUser.ID, roles.ProjectRoleInvestigator)

			result, err := svc.AddParticipant(plainUser, p.ID, project.AddParticipantDTO{
				Username: "bob",
				Role:     "investigator",
			})

			Expect(err).To(Equal(apperrors.ErrPermissionDenied))
			Expect(result).To(BeNil())
		})

		It("should deny a researcher participant entirely", func() {
			mockRepo.addParticipant(p.ID, plainUser.ID, roles.ProjectRoleResearcher)

			_, err := svc.AddParticipant(plainUser, p.ID, project.AddParticipantDTO{
				Username: "bob",
				Role:     "researcher",
			})

			Expect(err).To(Equal(apperrors.ErrPermissionDenied))
		})

		It("should not create the user when permission is denied", func() {
			before := mockRepo.writeCount

			_, err := svc.AddParticipant(plainUser, p.ID, project.AddParticipantDTO{
				Username: "ghost",
				Role:     "researcher",
			})

			Expect(err).To(Equal(apperrors.ErrPermissionDenied))
			Expect(mockRepo.writeCount).To(Equal(before))
			Expect(mockRepo.usersByName).ToNot(HaveKey("ghost"))
		})

		It("should reject an unknown role before any permission check", func() {
			_, err := svc.AddParticipant(coordinator, p.ID, project.AddParticipantDTO{
				Username: "alice",
				Role:     "owner",
			})

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeValidationFailed))
			details, isValidation := appErr.Details.(apperrors.ValidationErrors)
			Expect(isValidation).To(BeTrue())
			Expect(details.Errors[0].Code).To(Equal(string(apperrors.ErrCodeInvalidRole)))
		})

		It("should surface a duplicate participant as a conflict", func() {
			_, err := svc.AddParticipant(coordinator, p.ID, project.AddParticipantDTO{
				Username: "alice",
				Role:     "researcher",
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.AddParticipant(coordinator, p.ID, project.AddParticipantDTO{
				Username: "alice",
				Role:     "investigator",
			})

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeDuplicateParticipant))
		})

		It("should return not found for a missing project", func() {
			_, err := svc.AddParticipant(coordinator, 999, project.AddParticipantDTO{
				Username: "alice",
				Role:     "researcher",
			})
			Expect(err).To(Equal(apperrors.ErrProjectNotFound))
		})

		It("should pass through repository errors", func() {
			mockRepo.participantError = stderrors.New("connection reset")

			_, err := svc.AddParticipant(coordinator, p.ID, project.AddParticipantDTO{
				Username: "alice",
				Role:     "researcher",
			})
			Expect(err).To(MatchError("connection reset"))
		})
	})

	Describe("ListParticipants", func() {
		var p *project.Project

		BeforeEach(func() {
			p = mockRepo.addProject(&project.Project{Name: "study", CreatorID: coordinator.ID})
			mockRepo.addParticipant(p.ID, plainUser.ID, roles.ProjectRoleInvestigator)
		})

		It("should allow the creator", func() {
			result, err := svc.ListParticipants(coordinator, p.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(1))
		})

		It("should allow a system controller", func() {
			result, err := svc.ListParticipants(controller, p.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(1))
		})

		It("should deny an investigator participant", func() {
			_, err := svc.ListParticipants(plainUser, p.ID)
			Expect(err).To(Equal(apperrors.ErrPermissionDenied))
		})
	})

	Describe("AttachDataset", func() {
		var p *project.Project

		BeforeEach(func() {
			p = mockRepo.addProject(&project.Project{Name: "study", CreatorID: coordinator.ID})
			mockDS.datasets[7] = &dataset.Dataset{ID: 7, Name: "survey", Tier: 2}
		})

		It("should let the creator attach an existing dataset", func() {
			err := svc.AttachDataset(coordinator, p.ID, 7)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.datasetLinks[p.ID]).To(ContainElement(int64(7)))
		})

		It("should let an investigator participant attach", func() {
			mockRepo.addParticipant(p.ID, plainUser.ID, roles.ProjectRoleInvestigator)

			err := svc.AttachDataset(plainUser, p.ID, 7)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should deny a researcher participant", func() {
			mockRepo.addParticipant(p.ID, plainUser.ID, roles.ProjectRoleResearcher)

			err := svc.AttachDataset(plainUser, p.ID, 7)
			Expect(err).To(Equal(apperrors.ErrPermissionDenied))
		})

		It("should fail for a missing dataset without writing", func() {
			err := svc.AttachDataset(coordinator, p.ID, 999)

			Expect(err).To(Equal(apperrors.ErrDatasetNotFound))
			Expect(mockRepo.datasetLinks[p.ID]).To(BeEmpty())
		})
	})

	Describe("ListDatasets", func() {
		var p *project.Project

		BeforeEach(func() {
			p = mockRepo.addProject(&project.Project{Name: "study", CreatorID: coordinator.ID})
			mockRepo.datasetLinks[p.ID] = []int64{7, 8}
		})

		It("should list datasets for a related actor", func() {
			result, err := svc.ListDatasets(coordinator, p.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(2))
		})

		It("should hide the project from an unrelated actor", func() {
			_, err := svc.ListDatasets(plainUser, p.ID)
			Expect(err).To(Equal(apperrors.ErrProjectNotFound))
		})
	})
})
