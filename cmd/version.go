// queenGT: a tool for reconstructing honeybee queen genotypes from drone sequencing data.
// Copyright (c) 2023-2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/queengt/blob/master/LICENSE.txt>.

package cmd

import (
	"fmt"
	"os"

	"github.com/exascience/queengt/utils"
)

// VersionHelp is the help string for this command.
const VersionHelp = "version parameters:\n" +
	"queengt version\n"

// licenseNotice is printed by the version command.
const licenseNotice = "Copyright (c) 2023-2026 imec vzw.\n" +
	"This program comes with ABSOLUTELY NO WARRANTY.\n" +
	"This is free software, and you are welcome to redistribute it under\n" +
	"the conditions of the GNU Affero General Public License version 3,\n" +
	"with Additional Terms; see " + utils.ProgramURL + " for details.\n"

// Version implements the queengt version command.
func Version() {
	fmt.Fprintln(os.Stdout, utils.ProgramName, "version", utils.ProgramVersion)
	fmt.Fprint(os.Stdout, licenseNotice)
}
