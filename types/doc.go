// Copyright (c) MemeFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 MemeFlow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 llm、bulk、workflow 等
上层模块提供统一的错误契约。所有跨包共享的错误码均定义于此，
以避免循环依赖。

# 错误体系

  - Error / ErrorCode — 结构化错误，含 HTTP 状态码、Retryable、Provider 标记

错误码分为两级：

  - 请求级（ErrInvalidInput、ErrBackendFailure、ErrRateLimit 等）——
    由执行器捕获为结果数据，绝不中断同批其他请求
  - 阶段级（ErrPipeline、ErrMissingCredential）—— 终止整个运行

# 主要能力

  - 错误工具链：IsRetryable / GetErrorCode
  - 链式构造：NewError(...).WithCause(...).WithHTTPStatus(...).WithRetryable(...)
*/
package types
