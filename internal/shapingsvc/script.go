package shapingsvc

import "github.com/go-text/typesetting/language"

// AnalyzeScript walks source[start:start+length] and returns maximal runs
// of the same detected script, matching SS's
// `analyze_script(source, start, length) -> iterator<(pos, len, script)>`
// (spec §6). Direction is derived from the script (RTL scripts reported
// as such); the core does not itself run bidi reordering.
func AnalyzeScript(source []rune, start, length int) []ScriptAnalysis {
	if length <= 0 || start < 0 || start+length > len(source) {
		return nil
	}
	var runs []ScriptAnalysis
	runStart := start
	runScript := language.LookupScript(source[start])
	for i := start + 1; i < start+length; i++ {
		s := language.LookupScript(source[i])
		if s != runScript {
			runs = append(runs, newScriptRun(runStart, i-runStart, runScript))
			runStart = i
			runScript = s
		}
	}
	runs = append(runs, newScriptRun(runStart, start+length-runStart, runScript))
	return runs
}

func newScriptRun(pos, length int, script language.Script) ScriptAnalysis {
	return ScriptAnalysis{
		TextPosition: pos,
		TextLength:   length,
		Script:       string(script),
		Direction:    directionForScript(script),
	}
}

// rtlScripts lists the scripts analyze_script reports as right-to-left.
var rtlScripts = map[language.Script]bool{
	"Arab": true,
	"Hebr": true,
	"Syrc": true,
	"Thaa": true,
	"Nkoo": true,
}

func directionForScript(s language.Script) Direction {
	if rtlScripts[s] {
		return DirectionRTL
	}
	return DirectionLTR
}
