// Package procurement models purchase procurements and their workflow.
//
// A [Procurement] collects the SKUs ordered from a source, and, once goods
// arrive, the UPL candidates (labelled units) that will be booked into
// stock. Its status moves forward through new, ordered, arrived,
// processing and closed; each transition checks the preconditions below
// and leaves the procurement unchanged when they fail.
//
//	ordered     delivery date set, at least one SKU
//	arrived     from ordered
//	processing  from ordered or arrived
//	closed      from processing, every SKU has exactly its ordered
//	            amount of UPL candidates
//
// UPL identifiers are digit strings validated with the Luhn checksum.
package procurement
