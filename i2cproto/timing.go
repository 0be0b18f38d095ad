// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cproto

import "time"

// sleep is a package variable rather than a direct time.Sleep call so tests
// can swap in a faster or instrumented clock without touching the bit
// layer itself.
var sleep = time.Sleep
