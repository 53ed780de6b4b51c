// internal/pkg/zklock/lock.go
package zklock

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
)

const lockRoot = "/promo_locks" // 所有分布式锁的根节点

// Connect 建立 ZooKeeper 会话。
func Connect(addrs []string) (*zk.Conn, error) {
	conn, _, err := zk.Connect(addrs, 10*time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to zookeeper")
	}
	return conn, nil
}

// LeaderLock 基于临时顺序节点实现的非阻塞互斥锁。
// resolution worker 用它保证多实例部署时同一时刻只有一个实例在排空队列。
type LeaderLock struct {
	conn     *zk.Conn
	path     string // 锁的父路径，例如 /promo_locks/resolution-worker
	lockNode string // 成功创建后自己的节点路径
}

// NewLeaderLock 创建一个锁实例并确保父节点存在。
func NewLeaderLock(conn *zk.Conn, resourceID string) (*LeaderLock, error) {
	for _, p := range []string{lockRoot, lockRoot + "/" + resourceID} {
		exists, _, err := conn.Exists(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to check lock node %s", p)
		}
		if !exists {
			_, err := conn.Create(p, []byte(""), 0, zk.WorldACL(zk.PermAll))
			if err != nil && err != zk.ErrNodeExists {
				return nil, errors.Wrapf(err, "failed to create lock node %s", p)
			}
		}
	}
	return &LeaderLock{conn: conn, path: lockRoot + "/" + resourceID}, nil
}

// TryAcquire 尝试获取锁，立即返回。拿不到锁时删除自己的节点并返回 false，
// worker 直接跳过本轮 tick 即可，不需要阻塞等待。
func (l *LeaderLock) TryAcquire() (bool, error) {
	if l.lockNode != "" {
		// 会话过期时临时节点会被 ZK 删除，续用前必须确认节点还在，
		// 否则另一个实例已经合法拿到锁，两边都自认持有
		exists, _, err := l.conn.Exists(l.lockNode)
		if err != nil {
			return false, errors.Wrap(err, "failed to check held lock node")
		}
		if exists {
			return true, nil
		}
		l.lockNode = ""
	}

	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return false, errors.Wrap(err, "failed to create sequential node")
	}

	mySeq, err := parseSeq(nodePath)
	if err != nil {
		l.conn.Delete(nodePath, -1)
		return false, err
	}

	children, _, err := l.conn.Children(l.path)
	if err != nil {
		l.conn.Delete(nodePath, -1)
		return false, errors.Wrap(err, "failed to get children nodes")
	}

	if hasLowestSeq(mySeq, children) {
		l.lockNode = nodePath
		return true, nil
	}

	// 不是最小序号，放弃本次竞争
	if err := l.conn.Delete(nodePath, -1); err != nil && err != zk.ErrNoNode {
		return false, errors.Wrap(err, "failed to delete losing lock node")
	}
	return false, nil
}

// parseSeq 取出顺序节点名末尾的序号。protected 节点名形如
// _c_<随机uuid>-lock-<序号>，字典序由随机前缀主导，选主必须按序号比较。
func parseSeq(name string) (int, error) {
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return 0, errors.Errorf("no sequence suffix in lock node name %q", name)
	}
	seq, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return 0, errors.Wrapf(err, "malformed sequence suffix in lock node name %q", name)
	}
	return seq, nil
}

// hasLowestSeq 判断 mySeq 是否是所有候选节点里最小的序号。
// 没有序号后缀的子节点不是锁节点，忽略。
func hasLowestSeq(mySeq int, children []string) bool {
	for _, child := range children {
		seq, err := parseSeq(child)
		if err != nil {
			continue
		}
		if seq < mySeq {
			return false
		}
	}
	return true
}

// Release 释放锁。
func (l *LeaderLock) Release() error {
	if l.lockNode == "" {
		return nil
	}
	err := l.conn.Delete(l.lockNode, -1)
	l.lockNode = ""
	if err != nil && err != zk.ErrNoNode {
		return errors.Wrap(err, "failed to delete lock node")
	}
	return nil
}
