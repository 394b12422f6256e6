// Package authz provides the single-principal authorization model and the
// controlled policy bypass used by privileged internal readers.
//
// Core concepts:
//
//   - Principal: A single authorization identity per request (System/User).
//     Set via NewSystemContext, NewUserContext, or WithPrincipal.
//
//   - Decision: An explicit Allow/Deny injected into the context. The row
//     policy evaluator consults it before evaluating rule chains, so a
//     privileged code path can short-circuit evaluation without re-entering
//     the policy layer.
//
//   - Bypass: Controlled policy bypass via RunWithBypass (closure, preferred)
//     or WithBypassPolicy (explicit context). All bypass operations are
//     logged with a stable reason string.
//
// Usage rules:
//
//  1. Never use DecisionContext directly outside trusted wiring code.
//  2. Prefer RunWithBypass closures to limit bypass scope.
//  3. When using WithBypassPolicy, assign to bypassCtx, never ctx.
//  4. All bypass reasons must be stable strings for audit aggregation.
//  5. Background tasks must declare a System principal via NewSystemContext.
package authz
