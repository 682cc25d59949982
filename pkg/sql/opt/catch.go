// Copyright 2026 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package opt

import (
	"runtime"

	"github.com/cockroachdb/errors"
)

// ShouldCatch is used to turn panics from optimizer functions into errors. It
// is called with the result of recover() from a deferred function; it must be
// a separate call because recover only works when it is called directly by the
// deferred function. For example:
//
//	defer func() {
//	  if r := recover(); r != nil {
//	    if ok, e := opt.ShouldCatch(r); ok {
//	      err = e
//	    } else {
//	      panic(r)
//	    }
//	  }
//	}()
//
// This allows the optimizer to propagate errors internally as panics without
// adding error checks everywhere. This is only possible because the optimizer
// code does not update shared state and does not manipulate locks.
func ShouldCatch(r interface{}) (ok bool, err error) {
	err, ok = r.(error)
	if !ok {
		// Not an error object. For serious internal errors e.g. in the scheduler,
		// bad goroutine state, allocator problem etc, the go runtime throws a
		// string which does not implement error. So in this case we suspect we are
		// not able to recover, and must crash.
		return false, nil
	}
	if errors.HasInterface(err, (*runtime.Error)(nil)) {
		// Convert runtime errors to assertion failures, which include stacks.
		return true, errors.HandleAsAssertionFailure(err)
	}
	return true, err
}
