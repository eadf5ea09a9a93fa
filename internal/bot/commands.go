package bot

import (
	"context"
	"strings"

	"smokebuddy/internal/responder"
	"smokebuddy/internal/types"
)

// Command names. Matching is exact after trimming surrounding whitespace.
const (
	CommandStatus    = "/status"
	CommandYesterday = "/yesterday"
	CommandHelp      = "/help"
	CommandReset     = "/reset"
	CommandWeather   = "/weather"
)

// InvalidCommandText answers any unrecognized slash command.
const InvalidCommandText = "小灰聽不懂這個指令耶～輸入 /help 看看小灰會什麼吧！"

// ResetText confirms /reset.
const ResetText = "好的，今天的數字歸零了！重新開始，小灰陪你～"

// WeatherDisabledText answers /weather when no weather source is configured.
const WeatherDisabledText = "小灰還沒有學會看天氣喔～"

// HelpText lists the commands and the count syntax.
var HelpText = strings.Join([]string{
	"小灰會的事情：",
	"・輸入數字（例如 1、+2、-1）記錄今天抽了幾根",
	CommandStatus + "：看看今天、昨天和連續進步天數",
	CommandYesterday + "：看看昨天抽了幾根",
	CommandReset + "：把今天的數字歸零",
	CommandWeather + "：看看今天的天氣",
	CommandHelp + "：顯示這個說明",
	"其他的話就陪小灰聊聊天吧～",
}, "\n")

// HandleCommand executes a slash command and replies with its result.
func (d *Dispatcher) HandleCommand(ctx context.Context, ev Event, reply types.ReplyChannel, command string) error {
	command = strings.TrimSpace(command)

	var text string
	switch command {
	case CommandStatus:
		rec, err := d.counter.Current(ctx)
		if err != nil {
			return err
		}
		text = responder.StatusText(*rec)
	case CommandYesterday:
		rec, err := d.counter.Current(ctx)
		if err != nil {
			return err
		}
		text = responder.YesterdayText(*rec)
	case CommandHelp:
		text = HelpText
	case CommandReset:
		if _, err := d.counter.ResetToday(ctx); err != nil {
			return err
		}
		text = ResetText
	case CommandWeather:
		if d.weather == nil {
			text = WeatherDisabledText
		} else {
			text = d.weather.Describe(ctx)
		}
	default:
		d.logger.InfoContext(ctx, "unrecognized command", "command", command)
		text = InvalidCommandText
	}
	return reply.Reply(ctx, types.TextMessage(text))
}
