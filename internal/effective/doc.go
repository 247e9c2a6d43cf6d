// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package effective defines the frozen schema model produced once resolution
// completes.
//
// # Immutability
//
// Every type here is built once by the effective model builder and never
// changed afterwards. Fields are unexported, slices are copied on the way in
// and on the way out, and cross-references (a leaf's typedef, a leafref's
// target, an identity's bases) are plain pointers into the same graph. A
// SchemaContext can therefore be shared by any number of readers without
// locking.
//
// # Declared vs effective
//
// A Declared statement is the statement as written. An effective Statement
// is what remains after groupings are expanded, augments applied, deviations
// and features taken into account. Statements copied into place keep a
// pointer to the Declared statement they originate from and record how they
// got there in their CopyHistory.
package effective
