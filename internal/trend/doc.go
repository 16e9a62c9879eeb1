// Package trend computes summary statistics over the accumulated
// snapshot history: consistency, average rank, and listing churn.
package trend
