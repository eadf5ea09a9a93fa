package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smokebuddy/internal/responder"
	"smokebuddy/internal/types"
)

func TestHandleCommand_Status(t *testing.T) {
	counter := new(mockCounter)
	rec := &types.CounterRecord{Date: "2026-02-06", Today: 4, Yesterday: 9, Streak: 2}
	counter.On("Current", mock.Anything).Return(rec, nil)

	reply := &recordingReply{}
	err := newTestDispatcher(counter, nil).Route(context.Background(), Event{Text: "/status"}, reply)
	require.NoError(t, err)
	assert.Equal(t, []string{responder.StatusText(*rec)}, reply.texts())
}

func TestHandleCommand_Yesterday(t *testing.T) {
	counter := new(mockCounter)
	rec := &types.CounterRecord{Date: "2026-02-06", Today: 4, Yesterday: 9}
	counter.On("Current", mock.Anything).Return(rec, nil)

	reply := &recordingReply{}
	err := newTestDispatcher(counter, nil).Route(context.Background(), Event{Text: " /yesterday "}, reply)
	require.NoError(t, err)
	assert.Equal(t, []string{"昨天一共抽了 9 根。"}, reply.texts())
}

func TestHandleCommand_Reset(t *testing.T) {
	counter := new(mockCounter)
	counter.On("ResetToday", mock.Anything).Return(&types.CounterRecord{Date: "2026-02-06", Yesterday: 9, Streak: 2}, nil)

	reply := &recordingReply{}
	err := newTestDispatcher(counter, nil).Route(context.Background(), Event{Text: "/reset"}, reply)
	require.NoError(t, err)
	assert.Equal(t, []string{ResetText}, reply.texts())
	counter.AssertExpectations(t)
}

func TestHandleCommand_Help(t *testing.T) {
	reply := &recordingReply{}
	err := newTestDispatcher(new(mockCounter), nil).Route(context.Background(), Event{Text: "/help"}, reply)
	require.NoError(t, err)
	assert.Equal(t, []string{HelpText}, reply.texts())
	for _, cmd := range []string{CommandStatus, CommandYesterday, CommandReset, CommandWeather, CommandHelp} {
		assert.Contains(t, HelpText, cmd)
	}
}

func TestHandleCommand_Weather(t *testing.T) {
	reply := &recordingReply{}
	err := newTestDispatcher(new(mockCounter), staticWeather("晴天")).Route(context.Background(), Event{Text: "/weather"}, reply)
	require.NoError(t, err)
	assert.Equal(t, []string{"晴天"}, reply.texts())
}

func TestHandleCommand_WeatherDisabled(t *testing.T) {
	reply := &recordingReply{}
	err := newTestDispatcher(new(mockCounter), nil).Route(context.Background(), Event{Text: "/weather"}, reply)
	require.NoError(t, err)
	assert.Equal(t, []string{WeatherDisabledText}, reply.texts())
}

func TestHandleCommand_Invalid(t *testing.T) {
	for _, input := range []string{"/", "/STATUS", "/status now", "/unknown"} {
		t.Run(input, func(t *testing.T) {
			counter := new(mockCounter)
			reply := &recordingReply{}
			err := newTestDispatcher(counter, nil).Route(context.Background(), Event{Text: input}, reply)
			require.NoError(t, err)
			assert.Equal(t, []string{InvalidCommandText}, reply.texts())
			counter.AssertNotCalled(t, "Current", mock.Anything)
		})
	}
}
