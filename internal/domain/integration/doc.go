// Package integration contains the shop/ERP integration bounded context.
// It describes how shop-side entities (orders, categories, articles) are
// mapped onto their plentymarkets counterparts.
//
// Key concepts:
//   - MappingStore: Port for the persistent local->remote identifier mapping
//   - ExportableOrder: Read-only snapshot of a shop order awaiting export
//   - CategoryNode / RemoteCategoryIndex: Inputs of the category reconciliation
//   - ERPClient: Port for the plentymarkets SOAP service
//   - ExportStatusRecord: Per-order retry bookkeeping
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
