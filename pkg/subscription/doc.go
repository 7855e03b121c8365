// Package subscription stores which plan each user is on.
//
// The metering service only reads from here: subscription rows are written
// by the billing provider's webhook handlers, which live outside this
// module. The one piece of logic this package owns is effective-plan
// resolution: a missing, past-due or cancelled subscription resolves to the
// free plan, so gating is always performed against the plan the user holds
// right now, not the plan active when usage accrued.
package subscription
