// Package dependencies wires the storage engine to the policy evaluator,
// invariant guards and provenance observers. This is the single place the
// pipeline is assembled; everything downstream receives a fully armed
// store.
package dependencies

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/guards"
	"github.com/looplj/crmhub/internal/log"
	"github.com/looplj/crmhub/internal/policies"
	"github.com/looplj/crmhub/internal/provenance"
	"github.com/looplj/crmhub/internal/roles"
	"github.com/looplj/crmhub/internal/store"
)

var Module = fx.Module("dependencies",
	fx.Provide(log.New),
	fx.Provide(NewStore),
	fx.Provide(NewResolvers),
	fx.Provide(provenance.NewRecorder),
	fx.Invoke(Arm),
	fx.Invoke(func(lc fx.Lifecycle, s *store.Store) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return s.Migrate(ctx)
			},
			OnStop: func(ctx context.Context) error {
				return s.Close()
			},
		})
	}),
)

func NewStore(cfg store.Config) (*store.Store, error) {
	return store.Open(cfg)
}

// Resolvers groups the privileged resolution paths handed to policy rules
// and guards.
type Resolvers struct {
	fx.Out

	Roles *roles.Resolver
	Teams *roles.TeamResolver
}

func NewResolvers(s *store.Store) Resolvers {
	reader := s.PrivilegedReader()

	return Resolvers{
		Roles: roles.NewResolver(reader),
		Teams: roles.NewTeamResolver(reader),
	}
}

// Arm installs the policy evaluator, guards and observers on the store.
// Order matters for observers: audit first, then transition history.
func Arm(s *store.Store, roleResolver *roles.Resolver, teamResolver *roles.TeamResolver, recorder *provenance.Recorder) {
	s.SetAuthorizer(policies.NewDefaultEvaluator(policies.Resolvers{
		Roles:  roleResolver,
		Teams:  teamResolver,
		Owners: s.PrivilegedReader(),
	}))

	s.RegisterGuard(guards.LeadConversionGuard())
	s.RegisterGuard(guards.TaskCompletionGuard())
	s.RegisterGuard(guards.DocumentAttachmentGuard())
	s.RegisterGuard(guards.OwnershipGuard(roleResolver))

	s.RegisterObserver(provenance.AuditObserver(recorder))
	s.RegisterObserver(provenance.LeadStatusObserver(recorder))
	s.RegisterObserver(provenance.DealStageObserver(recorder))
}
