// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package io provides access to the encoder GPIO inputs via sysfs,
// and a software quadrature signal generator.

package io

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// Setter is an interface for setting an output level.
type Setter interface {
	Set(int) error
}

// Getter is an interface for reading an input level.
type Getter interface {
	Get() (int, error)
}

// Timeout for exported sysfs files to become accessible.
var verifyTimeout = 2 * time.Second

// Verify enables waiting for exported files to become writable.
// When not running as root, udev adjusts the group and mode of the
// exported files shortly after the export, and accessing them before
// that happens fails with a permission error.
var Verify = false

func init() {
	u, err := user.Current()
	if err == nil && u.Uid != "0" {
		Verify = true
	}
}

// unexport releases a unit by writing its number to the unexport file.
func unexport(unexportFile string, unit int) error {
	return writeFile(unexportFile, strconv.Itoa(unit))
}

// export makes the unit's files available if they are not already
// accessible, optionally waiting for them to become writable.
func export(f, exportFile string, unit int) error {
	if unix.Access(f, unix.W_OK|unix.R_OK) == nil {
		return nil
	}
	err := writeFile(exportFile, strconv.Itoa(unit))
	if err == nil && Verify {
		return verifyFile(f)
	}
	return err
}

// writeFile writes a string to an existing file.
func writeFile(fname, s string) error {
	f, err := os.OpenFile(fname, os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(s))
	return err
}

// verifyFile polls until the file is writable or the timeout expires.
func verifyFile(f string) error {
	sl := time.Millisecond
	for tout := time.Duration(0); tout < verifyTimeout; tout += sl {
		if unix.Access(f, unix.W_OK) == nil {
			return nil
		}
		time.Sleep(sl)
	}
	return fmt.Errorf("%s: not writable", f)
}
