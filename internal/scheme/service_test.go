package scheme

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"panchayat/internal/identity"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/requestcontext"
)

type SchemeServiceSuite struct {
	suite.Suite
	schemes *MemoryStore
	users   *identity.MemoryStore
	service *Service
	ctx     context.Context
}

func TestSchemeServiceSuite(t *testing.T) {
	suite.Run(t, new(SchemeServiceSuite))
}

func (s *SchemeServiceSuite) SetupTest() {
	s.schemes = NewMemoryStore()
	s.users = identity.NewMemoryStore()
	s.service = NewService(s.schemes, s.users)

	admin := identity.User{
		ID: "admin-1", Email: "admin@gram.in", Role: identity.RoleAdmin,
		FullName: "Sunita Patel", IsActive: true, CreatedAt: time.Now(),
	}
	s.Require().NoError(s.users.Create(context.Background(), admin))
	s.ctx = requestcontext.WithUserID(context.Background(), admin.ID)
}

func (s *SchemeServiceSuite) TestCreate() {
	s.Run("requires name and description", func() {
		_, err := s.service.Create(s.ctx, CreateInput{SchemeName: "PM Awas Yojana"})
		s.Require().Error(err)
		s.Equal("scheme_name and description are required", dErrors.Detail(err))
	})

	s.Run("active by default", func() {
		created, err := s.service.Create(s.ctx, CreateInput{
			SchemeName:  "PM Awas Yojana",
			Description: "Housing scheme for rural poor citizens.",
		})
		s.Require().NoError(err)
		s.True(created.IsActive)
		s.Equal("admin-1", created.CreatedByID)
		s.Zero(created.AllocatedFunds)
	})

	s.Run("explicit inactive honored", func() {
		inactive := false
		funds := 5000000.0
		created, err := s.service.Create(s.ctx, CreateInput{
			SchemeName:     "Village Solar Project",
			Description:    "Solar panels at subsidized rates.",
			IsActive:       &inactive,
			AllocatedFunds: &funds,
		})
		s.Require().NoError(err)
		s.False(created.IsActive)
		s.Equal(funds, created.AllocatedFunds)
	})
}

func (s *SchemeServiceSuite) TestListAttachesCreator() {
	_, err := s.service.Create(s.ctx, CreateInput{SchemeName: "MGNREGA", Description: "Wage employment."})
	s.Require().NoError(err)

	schemes, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(schemes, 1)
	s.Require().NotNil(schemes[0].Creator)
	s.Equal("Sunita Patel", schemes[0].Creator.FullName)
}

func (s *SchemeServiceSuite) TestUpdate() {
	created, err := s.service.Create(s.ctx, CreateInput{SchemeName: "Jal Jeevan Mission", Description: "Tap water connections."})
	s.Require().NoError(err)

	s.Run("patches only the provided fields", func() {
		utilized := 2400000.0
		updated, err := s.service.Update(s.ctx, created.ID, UpdateInput{UtilizedFunds: &utilized})
		s.Require().NoError(err)
		s.Equal(created.SchemeName, updated.SchemeName)
		s.Equal(utilized, updated.UtilizedFunds)
	})

	s.Run("unknown id is a 404", func() {
		_, err := s.service.Update(s.ctx, uuid.NewString(), UpdateInput{})
		s.Require().Error(err)
		s.Equal("Scheme not found", dErrors.Detail(err))
	})
}

func (s *SchemeServiceSuite) TestDelete() {
	created, err := s.service.Create(s.ctx, CreateInput{SchemeName: "CM Health Mission", Description: "Free healthcare."})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, created.ID))

	err = s.service.Delete(s.ctx, created.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
