package model

// PlayerGame is a player's playing window for one game.
type PlayerGame struct {
	GameID        string `json:"game_id"`
	PlayerID      string `json:"player_id"`
	PlayerName    string `json:"player_name"`
	TeamID        string `json:"team_id"`
	TeamName      string `json:"team_name"`
	MinuteIn      int    `json:"minute_in"`
	MinuteOut     int    `json:"minute_out"`
	MinutesPlayed int    `json:"minutes_played"`
}
