package retrosheet

import (
	"io"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
)

// GameLogColumns names the fields of a Retrosheet game log record, in file order.
var GameLogColumns = []string{
	"DT", "N_GAMES", "DOW", "VISITING_TEAM", "VISITING_LEAGUE",
	"VISITING_TEAM_GAME_NUM", "HOME_TEAM", "HOME_LEAGUE", "HOME_TEAM_GAME_NUM",
	"VISITING_SCORE", "HOME_SCORE", "LEN_GAME_OUTS", "DAY/NIGHT", "COMPLT_INFO",
	"FORFEIT_INFO", "PROTEST_INFO", "PARK_ID", "ATTENDANCE", "GAME_TIME_MIN",
	"VISITING_LINE_SCORE", "HOME_LINE_SCORE", "VISITING_OFF_AT_BATS",
	"VISITING_OFF_HITS", "VISITING_OFF_DOUBLES", "VISITING_OFF_TRIPLES",
	"VISITING_OFF_HR", "VISITING_OFF_RBI", "VISITING_OFF_SAC_HITS",
	"VISITING_OFF_SAC_FLY", "VISITING_OFF_HIT_BY_PITCH", "VISITING_OFF_WALK",
	"VISITING_OFF_INT_WALK", "VISITING_OFF_STRUCK_OUT",
	"VISITING_OFF_STOLEN_BASE", "VISITING_OFF_CAUGHT_STEALING",
	"VISITING_OFF_GROUND_INTO_DOUBLE_PLAY", "VISITING_OFF_CATCHER_INTERFERENCE",
	"VISITING_OFF_LEFT_ON_BASE", "VISITING_PIT_PITCHERS_USED",
	"VISITING_PIT_EARNED_RUNS(INDIVIDUAL)", "VISITING_PIT_EARNED_RUNS(TEAM)",
	"VISITING_PIT_WILD_PITCHES", "VISITING_PIT_BALKS", "VISITING_DEF_PUTOUTS",
	"VISITING_DEF_ASSISTS", "VISITING_DEF_ERRORS", "VISITING_DEF_PASSED_BALLS",
	"VISITING_DEF_DOUBLE_PLAYS", "VISITING_DEF_TRIPLE_PLAYS",
	"HOME_OFF_AT_BATS", "HOME_OFF_HITS", "HOME_OFF_DOUBLES", "HOME_OFF_TRIPLES",
	"HOME_OFF_HR", "HOME_OFF_RBI", "HOME_OFF_SAC_HITS", "HOME_OFF_SAC_FLY",
	"HOME_OFF_HIT_BY_PITCH", "HOME_OFF_WALK", "HOME_OFF_INT_WALK",
	"HOME_OFF_STRUCK_OUT", "HOME_OFF_STOLEN_BASE", "HOME_OFF_CAUGHT_STEALING",
	"HOME_OFF_GROUND_INTO_DOUBLE_PLAY", "HOME_OFF_CATCHER_INTERFERENCE",
	"HOME_OFF_LEFT_ON_BASE", "HOME_PIT_PITCHERS_USED",
	"HOME_PIT_EARNED_RUNS(INDIVIDUAL)", "HOME_PIT_EARNED_RUNS(TEAM)",
	"HOME_PIT_WILD_PITCHES", "HOME_PIT_BALKS", "HOME_DEF_PUTOUTS",
	"HOME_DEF_ASSISTS", "HOME_DEF_ERRORS", "HOME_DEF_PASSED_BALLS",
	"HOME_DEF_DOUBLE_PLAYS", "HOME_DEF_TRIPLE_PLAYS", "HOME_PLATE_UMPIRE_ID",
	"HOME_PLATE_UMPIRE_NAME", "1B_UMPIRE_ID", "1B_UMPIRE_NAME", "2B_UMPIRE_ID",
	"2B_UMPIRE_NAME", "3B_UMPIRE_ID", "3B_UMPIRE_NAME", "LF_UMPIRE_ID",
	"LF_UMPIRE_NAME", "RF_UMPIRE_ID", "RF_UMPIRE_NAME",
	"VISITING_TEAM_MANAGER_ID", "VISITING_TEAM_MANAGER_NAME",
	"HOME_TEAM_MANAGER_ID", "HOME_TEAM_MANAGER_NAME", "WINNING_PITCHER_ID",
	"WINNING_PITCHER_NAME", "LOSING_PITCHER_ID", "LOSING_PITCHER_NAME",
	"SAVING_PITCHER_ID", "SAVING_PITCHER_NAME", "GAME_WINNING_RBI_BATTER_ID",
	"GAME_WINNING_RBI_BATTER_NAME", "VISITING_STARTING_PITCHER_ID",
	"VISITING_STARTING_PITCHER_NAME", "HOME_STARTING_PITCHER_ID",
	"HOME_STARTING_PITCHER_NAME", "VISITING_BATTER_1_ID",
	"VISITING_BATTER_1_NAME", "VISITING_BATTER_1_POS", "VISITING_BATTER_2_ID",
	"VISITING_BATTER_2_NAME", "VISITING_BATTER_2_POS", "VISITING_BATTER_3_ID",
	"VISITING_BATTER_3_NAME", "VISITING_BATTER_3_POS", "VISITING_BATTER_4_ID",
	"VISITING_BATTER_4_NAME", "VISITING_BATTER_4_POS", "VISITING_BATTER_5_ID",
	"VISITING_BATTER_5_NAME", "VISITING_BATTER_5_POS", "VISITING_BATTER_6_ID",
	"VISITING_BATTER_6_NAME", "VISITING_BATTER_6_POS", "VISITING_BATTER_7_ID",
	"VISITING_BATTER_7_NAME", "VISITING_BATTER_7_POS", "VISITING_BATTER_8_ID",
	"VISITING_BATTER_8_NAME", "VISITING_BATTER_8_POS", "VISITING_BATTER_9_ID",
	"VISITING_BATTER_9_NAME", "VISITING_BATTER_9_POS", "HOME_BATTER_1_ID",
	"HOME_BATTER_1_NAME", "HOME_BATTER_1_POS", "HOME_BATTER_2_ID",
	"HOME_BATTER_2_NAME", "HOME_BATTER_2_POS", "HOME_BATTER_3_ID",
	"HOME_BATTER_3_NAME", "HOME_BATTER_3_POS", "HOME_BATTER_4_ID",
	"HOME_BATTER_4_NAME", "HOME_BATTER_4_POS", "HOME_BATTER_5_ID",
	"HOME_BATTER_5_NAME", "HOME_BATTER_5_POS", "HOME_BATTER_6_ID",
	"HOME_BATTER_6_NAME", "HOME_BATTER_6_POS", "HOME_BATTER_7_ID",
	"HOME_BATTER_7_NAME", "HOME_BATTER_7_POS", "HOME_BATTER_8_ID",
	"HOME_BATTER_8_NAME", "HOME_BATTER_8_POS", "HOME_BATTER_9_ID",
	"HOME_BATTER_9_NAME", "HOME_BATTER_9_POS", "ADDL_INFO", "ACQUISITION_INFO",
}

// ParseGameLogs reads a headerless game log file (GLyyyy.TXT) into a frame
// with GameLogColumns.
func ParseGameLogs(r io.Reader) (*frame.Frame, error) {
	f, err := frame.ReadCSV(r, frame.CSVOptions{Columns: GameLogColumns})
	if err != nil {
		return nil, errors.Wrap(err, "parse game logs")
	}
	return f, nil
}
