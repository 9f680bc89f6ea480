// Package ir provides the value types of the positional encoding handed to the
// execution contract.
//
// This package contains value definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - unsigned integers are IRUint (uint256 range)
//   - NO objects or null - the contract layout is tuples all the way down
//   - Canonical JSON is the only serialization used for content identity
package ir
