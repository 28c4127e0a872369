// Copyright (C) 2026 Tau Protocol Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package types

import "errors"

// Every failure below is recoverable, an operation returning one of
// these leaves engine state exactly as it was.
var (
	// ErrMathDomain is returned when an input falls outside the domain
	// of the replication math, a reserve ratio on the curve boundary or
	// a probability outside (0, 1).
	ErrMathDomain = errors.New("input outside math domain")

	// ErrDivisionByZero is returned by fixed point division guards.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrOverflow is returned when a fixed point result exceeds 256 bits.
	ErrOverflow = errors.New("fixed point overflow")

	// ErrInvariantViolation is returned when the post-trade invariant
	// falls below the pre-trade invariant beyond tolerance.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrInsufficientSettlement is returned when a settlement callback
	// did not deliver the owed input amounts.
	ErrInsufficientSettlement = errors.New("insufficient settlement")

	// ErrPoolExists is returned when creating a pool whose calibration
	// hash is already registered.
	ErrPoolExists = errors.New("pool already exists for calibration")

	// ErrPoolNotFound is returned for operations on unknown pool IDs.
	ErrPoolNotFound = errors.New("no pool for given id")

	// ErrExpiredCalibration is returned when creating a pool, or adding
	// liquidity to one, past its maturity.
	ErrExpiredCalibration = errors.New("calibration is expired")

	// ErrPoolLocked is returned on reentrant operations against a pool
	// already mid-operation.
	ErrPoolLocked = errors.New("pool is locked")

	// ErrInsufficientLiquidity is returned when removing more liquidity
	// than the party holds, or more than the pool can release.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrInsufficientMargin is returned when a margin debit exceeds the
	// account balance.
	ErrInsufficientMargin = errors.New("insufficient margin balance")

	// ErrSwapLimitExceeded is returned when a swap quote breaches the
	// caller's limit amount.
	ErrSwapLimitExceeded = errors.New("swap limit exceeded")

	// ErrInvalidAmount is returned where a strictly positive amount is
	// required.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrInvalidCalibration is returned when a calibration carries a
	// zero strike or zero sigma.
	ErrInvalidCalibration = errors.New("invalid calibration parameters")

	// ErrInvalidObservationWindow is returned when two observations do
	// not bracket a usable TWAP window, wrong order, zero width or
	// different pools.
	ErrInvalidObservationWindow = errors.New("invalid observation window")

	// ErrInvalidCheckpoint is returned when restoring from a checkpoint
	// whose hash or version does not check out.
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")
)
