package container

// IIncrementalItem 支持增量更新的元素接口
// 功能：定义支持增量更新的元素必须实现的方法
// 说明：用于增量数组中元素的索引管理，确保元素能够正确跟踪自己在数组中的位置
type IIncrementalItem interface {
	Index() int         // 获取元素的索引
	SetIndex(index int) // 设置元素的索引
}

// IncrementalItemBase 增量元素基类
// 功能：提供增量元素的基础实现，包含索引管理功能
// 说明：可以作为其他结构体的嵌入字段，快速实现IIncrementalItem接口
type IncrementalItemBase struct {
	index int // 元素在数组中的索引
}

// Index 获取元素的索引
func (b *IncrementalItemBase) Index() int {
	return b.index
}

// SetIndex 设置元素的索引
func (b *IncrementalItemBase) SetIndex(index int) {
	b.index = index
}

// IncrementalArray 增量数组，支持延迟增删且保持插入顺序的数组
// 功能：遍历过程中登记的增删不会影响正在进行的遍历，在Prepare时统一执行
// 说明：删除后剩余元素的相对顺序不变，新元素追加在末尾。单一所有者使用，不加锁
type IncrementalArray[T IIncrementalItem] struct {
	data   []T // 主数据数组
	add    []T // 待添加的元素列表
	remove []T // 待删除的元素列表
}

// NewIncrementalArray 创建增量数组
func NewIncrementalArray[T IIncrementalItem]() *IncrementalArray[T] {
	return &IncrementalArray[T]{
		data:   make([]T, 0),
		add:    make([]T, 0),
		remove: make([]T, 0),
	}
}

// Len 获取当前数组长度（不含待添加元素）
func (a *IncrementalArray[T]) Len() int {
	return len(a.data)
}

// Data 获取原始数据
// 说明：返回的是内部数组，调用方不得修改；下一次Prepare后失效
func (a *IncrementalArray[T]) Data() []T {
	return a.data
}

// Add 增加元素（等到Prepare时才会真正增加）
func (a *IncrementalArray[T]) Add(value T) {
	a.add = append(a.add, value)
}

// Remove 删除元素（等到Prepare时才会真正删除）
// 说明：同一元素重复登记只删除一次
func (a *IncrementalArray[T]) Remove(value T) {
	a.remove = append(a.remove, value)
}

// Prepare 执行增量操作
// 功能：统一执行所有待处理的添加和删除操作
// 算法说明：
// 1. 按索引标记待删除元素
// 2. 原地压缩主数组，保留元素的相对顺序不变，清空尾部引用
// 3. 将待添加元素追加到末尾
// 4. 重新写入所有元素的索引，清空待处理列表
func (a *IncrementalArray[T]) Prepare() {
	if len(a.remove) > 0 {
		removed := make([]bool, len(a.data))
		for _, x := range a.remove {
			removed[x.Index()] = true
		}
		n := len(a.data)
		kept := a.data[:0]
		for i, x := range a.data {
			if !removed[i] {
				kept = append(kept, x)
			}
		}
		var zero T
		for i := len(kept); i < n; i++ {
			a.data[i] = zero
		}
		a.data = kept
	}
	a.data = append(a.data, a.add...)
	for i, x := range a.data {
		x.SetIndex(i)
	}
	a.add = []T{}
	a.remove = []T{}
}
