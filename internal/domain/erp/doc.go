// Package erp contains the ERP integration bounded context.
// This context exposes one uniform commerce-operations contract (customers,
// orders, invoices, quotations, shipping, payments, contacts) and leaves the
// vendor-specific wiring to infrastructure adapters.
//
// Key concepts:
//   - Backend: Port interface implemented once per ERP vendor (Prophet 21,
//     Inform, and a local store used when no ERP is configured)
//   - Result: the normalized associative structure every operation returns
//   - Error: the classified error taxonomy all backends normalize into
//   - ErrorReporter: collaborator that receives classified errors; operations
//     report and continue, they never propagate
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package erp
