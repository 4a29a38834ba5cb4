// Package models defines the ledger's domain rows.
//
// # Models
//
//   - Tracker: a ledger scope, either personal (one user) or group (shared)
//   - Member: join row between a user and a tracker
//   - Expense: a cost paid by one member of a tracker
//   - ExpenseSplit: one participant's percentage of an expense
//   - Payment: a claimed settlement from one user to another within a tracker
//   - User: display information for a user id
//
// # Design Principles
//
// 1. **Rows, not aggregates**: balances are never stored; they are derived on every
// read by the calculator package from Expense, ExpenseSplit and Payment rows.
// 2. **IDs, not pointers**: relationships are expressed with ID strings.
// 3. **Exact money**: amounts and percentages are decimal.Decimal, never float64.
//
// # Payment States
//
//	none ──MarkPaid──▶ pending ──ConfirmPayment──▶ confirmed
//	                      │
//	                      └──RejectPayment──▶ rejected
//
// Only confirmed payments affect balances. A rejected payment is kept with its
// timestamp so the history shows why an obligation reappeared.
package models
