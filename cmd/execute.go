package main

import (
	"skabillium/ringq/cmd/command"
	"skabillium/ringq/cmd/db"
	"skabillium/ringq/cmd/resp"
)

const RingqVersion = "0.1.0"

// execute runs cmd against d and returns the reply to serialize. Errors are
// returned as values and become error replies.
func execute(d *db.Database, cmd *command.Command) any {
	switch cmd.Kind {
	case command.CmdVersion:
		return "ringq server version " + RingqVersion
	case command.CmdPing:
		return resp.SimpleString("PONG")
	case command.CmdKeys:
		return d.Keys()
	case command.CmdFlushAll:
		d.FlushAll()
		return resp.OK
	case command.CmdNew:
		d.New(cmd.Key)
		return resp.OK
	case command.CmdFree:
		return okOrErr(d.Free(cmd.Key))
	case command.CmdInsertHead:
		return d.InsertHead(cmd.Key, cmd.Values...)
	case command.CmdInsertTail:
		return d.InsertTail(cmd.Key, cmd.Values...)
	case command.CmdRemoveHead, command.CmdRemoveTail:
		remove := d.RemoveHead
		if cmd.Kind == command.CmdRemoveTail {
			remove = d.RemoveTail
		}

		value, found, err := remove(cmd.Key, cmd.BufSize)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		return value
	case command.CmdSize:
		size, err := d.Size(cmd.Key)
		if err == db.ErrNoSuchQueue {
			return 0
		}
		return size
	case command.CmdDeleteMid:
		return okOrErr(d.DeleteMid(cmd.Key))
	case command.CmdDeleteDup:
		return okOrErr(d.DeleteDup(cmd.Key))
	case command.CmdSwap:
		return okOrErr(d.Swap(cmd.Key))
	case command.CmdReverse:
		return okOrErr(d.Reverse(cmd.Key))
	case command.CmdSort:
		return okOrErr(d.Sort(cmd.Key))
	case command.CmdShow:
		values, err := d.Show(cmd.Key)
		if err != nil {
			return err
		}
		return values
	}

	return command.ErrUnknownCmd(cmd.Name)
}

func okOrErr(err error) any {
	if err != nil {
		return err
	}
	return resp.OK
}
